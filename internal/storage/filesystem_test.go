package storage_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/asmira/fleetdocs/internal/config"
	"github.com/asmira/fleetdocs/internal/lifecycle"
	"github.com/asmira/fleetdocs/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStorage(t *testing.T) (storage.System, string) {
	t.Helper()
	dir := t.TempDir()

	sys, err := storage.New(&config.StorageConfig{BasePath: dir}, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	lc.WaitForStartup()

	return sys, dir
}

func TestNew_EmptyBasePath(t *testing.T) {
	_, err := storage.New(&config.StorageConfig{BasePath: ""}, testLogger())
	if err == nil {
		t.Fatal("New() succeeded with empty BasePath, want error")
	}
}

func TestStart_CreatesDirectory(t *testing.T) {
	baseDir := t.TempDir()
	targetDir := filepath.Join(baseDir, "nested", "documents")

	sys, err := storage.New(&config.StorageConfig{BasePath: targetDir}, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	lc.WaitForStartup()

	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		t.Error("Start() did not create storage directory")
	}
}

func TestStore_Retrieve_RoundTrip(t *testing.T) {
	sys, _ := newTestStorage(t)
	ctx := context.Background()

	key := "truck/abc/registration/reg.pdf"
	data := []byte("pdf content")

	if err := sys.Store(ctx, key, data); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	got, err := sys.Retrieve(ctx, key)
	if err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Retrieve() = %q, want %q", got, data)
	}
}

func TestStore_Overwrite(t *testing.T) {
	sys, _ := newTestStorage(t)
	ctx := context.Background()

	key := "truck/abc/registration/reg.pdf"
	if err := sys.Store(ctx, key, []byte("first")); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if err := sys.Store(ctx, key, []byte("second")); err != nil {
		t.Fatalf("Store() overwrite failed: %v", err)
	}

	got, err := sys.Retrieve(ctx, key)
	if err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Retrieve() = %q, want %q", got, "second")
	}
}

func TestRetrieve_NotFound(t *testing.T) {
	sys, _ := newTestStorage(t)

	_, err := sys.Retrieve(context.Background(), "truck/missing/registration/reg.pdf")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Retrieve() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	sys, _ := newTestStorage(t)
	ctx := context.Background()

	key := "driver/abc/health-exam/exam.pdf"
	if err := sys.Store(ctx, key, []byte("data")); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := sys.Delete(ctx, key); err != nil {
		t.Errorf("repeated Delete() failed: %v", err)
	}

	exists, err := sys.Validate(ctx, key)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if exists {
		t.Error("key still exists after Delete()")
	}
}

func TestDelete_CleansEmptyDirectory(t *testing.T) {
	sys, dir := newTestStorage(t)
	ctx := context.Background()

	key := "trailer/abc/tax-plate/plate.pdf"
	if err := sys.Store(ctx, key, []byte("data")); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "trailer", "abc", "tax-plate")); !os.IsNotExist(err) {
		t.Error("Delete() left empty slot directory behind")
	}
}

func TestInvalidKeys(t *testing.T) {
	sys, _ := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"traversal", "../escape.pdf"},
		{"nested traversal", "truck/../../escape.pdf"},
		{"absolute", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Store(ctx, tt.key, []byte("x")); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Store(%q) error = %v, want ErrInvalidKey", tt.key, err)
			}
		})
	}
}
