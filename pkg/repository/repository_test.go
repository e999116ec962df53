package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/asmira/fleetdocs/pkg/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, errNotFound},
		{"wrapped no rows maps to not found", fmt.Errorf("query: %w", sql.ErrNoRows), errNotFound},
		{"unique violation maps to duplicate", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error passes through", &pgconn.PgError{Code: "23503"}, &pgconn.PgError{Code: "23503"}},
		{"unknown error passes through", errors.New("boom"), errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)

			if tt.want == nil {
				if got != nil {
					t.Errorf("MapError() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.want.Error() {
				t.Errorf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE widgets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(context.Background(), "UPDATE widgets SET n = 1"); err != nil {
			return 0, err
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}
	if result != 42 {
		t.Errorf("WithTx() result = %d, want 42", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
		return 0, boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("WithTx() error = %v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	}()

	repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
		panic("boom")
	})
}

func TestExecExpectOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE widgets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE widgets").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repository.ExecExpectOne(context.Background(), db, "UPDATE widgets SET n = 1"); err != nil {
		t.Errorf("ExecExpectOne() with one row = %v", err)
	}

	err = repository.ExecExpectOne(context.Background(), db, "UPDATE widgets SET n = 1")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ExecExpectOne() with zero rows = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryMany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM widgets").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a").AddRow("b"))

	scan := func(s repository.Scanner) (string, error) {
		var name string
		err := s.Scan(&name)
		return name, err
	}

	names, err := repository.QueryMany(context.Background(), db, "SELECT name FROM widgets", nil, scan)
	if err != nil {
		t.Fatalf("QueryMany() failed: %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("QueryMany() = %v", names)
	}
}
