package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/pkg/repository"
	"github.com/google/uuid"
)

func (r *repo) UploadDocument(ctx context.Context, ref HolderRef, docType catalog.DocumentType, cmd UploadCommand) error {
	if cmd.FileName == "" || len(cmd.Data) == 0 {
		return fmt.Errorf("%w: file name and content required", ErrInvalid)
	}

	// Confirm the slot exists before writing the blob, so an upload against a
	// deleted holder leaves no orphan behind.
	previous, ok, err := r.currentStorageKey(ctx, ref, docType)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	key := buildStorageKey(ref, docType, cmd.FileName)
	if err := r.storage.Store(ctx, key, cmd.Data); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	q := `UPDATE document_slots
		SET file_name = $1, storage_key = $2
		WHERE holder_kind = $3 AND holder_id = $4 AND doc_type = $5`

	if _, err := r.db.ExecContext(ctx, q, cmd.FileName, key, string(ref.Kind), ref.ID, string(docType)); err != nil {
		r.releaseBlobs(ctx, []string{key})
		return fmt.Errorf("upload document: %w", err)
	}

	if previous != nil && *previous != key {
		r.releaseBlobs(ctx, []string{*previous})
	}

	r.logger.Info("document uploaded", "kind", ref.Kind, "id", ref.ID, "type", docType, "file", cmd.FileName)
	return nil
}

func (r *repo) UpdateDocument(ctx context.Context, ref HolderRef, docType catalog.DocumentType, cmd UpdateDocumentCommand) error {
	q := `UPDATE document_slots
		SET expiry_date = $1
		WHERE holder_kind = $2 AND holder_id = $3 AND doc_type = $4`

	if _, err := r.db.ExecContext(ctx, q, cmd.ExpiryDate, string(ref.Kind), ref.ID, string(docType)); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (r *repo) DeleteDocument(ctx context.Context, ref HolderRef, docType catalog.DocumentType) error {
	previous, ok, err := r.currentStorageKey(ctx, ref, docType)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	q := `UPDATE document_slots
		SET file_name = NULL, storage_key = NULL, expiry_date = NULL
		WHERE holder_kind = $1 AND holder_id = $2 AND doc_type = $3`

	if _, err := r.db.ExecContext(ctx, q, string(ref.Kind), ref.ID, string(docType)); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if previous != nil {
		r.releaseBlobs(ctx, []string{*previous})
	}

	r.logger.Info("document deleted", "kind", ref.Kind, "id", ref.ID, "type", docType)
	return nil
}

func (r *repo) GetSlot(ctx context.Context, ref HolderRef, docType catalog.DocumentType) (*catalog.Slot, error) {
	q := `SELECT doc_type, file_name, storage_key, expiry_date
		FROM document_slots
		WHERE holder_kind = $1 AND holder_id = $2 AND doc_type = $3`

	slot, err := repository.QueryOne(ctx, r.db, q,
		[]any{string(ref.Kind), ref.ID, string(docType)}, scanSlot)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &slot, nil
}

func (r *repo) ListSlots(ctx context.Context, ref HolderRef) ([]catalog.Slot, error) {
	q := `SELECT doc_type, file_name, storage_key, expiry_date
		FROM document_slots
		WHERE holder_kind = $1 AND holder_id = $2
		ORDER BY position ASC`

	slots, err := repository.QueryMany(ctx, r.db, q, []any{string(ref.Kind), ref.ID}, scanSlot)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if slots == nil {
		slots = []catalog.Slot{}
	}
	return slots, nil
}

// CommitDocuments applies one staging session's accumulated changes. Blobs
// for staged uploads are written first; the metadata then moves in a single
// transaction, deletions before uploads before expiry edits, so a replace
// staged as delete+upload lands in the right order. If the transaction fails
// the fresh blobs are released and the store is unchanged.
func (r *repo) CommitDocuments(ctx context.Context, cmd CommitCommand) error {
	if cmd.Empty() {
		return nil
	}

	stored := make([]string, 0, len(cmd.Uploads))
	keys := make(map[DocumentKey]string, len(cmd.Uploads))
	for _, up := range cmd.Uploads {
		if up.FileName == "" || len(up.Data) == 0 {
			return fmt.Errorf("%w: staged upload for %s/%s missing file content",
				ErrInvalid, up.Key.Ref.Kind, up.Key.Type)
		}
		key := buildStorageKey(up.Key.Ref, up.Key.Type, up.FileName)
		if err := r.storage.Store(ctx, key, up.Data); err != nil {
			r.releaseBlobs(ctx, stored)
			return fmt.Errorf("store staged document: %w", err)
		}
		stored = append(stored, key)
		keys[up.Key] = key
	}

	superseded, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]string, error) {
		var superseded []string

		for _, del := range cmd.Deletions {
			prev, ok, err := currentStorageKeyTx(ctx, tx, del.Ref, del.Type)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if prev != nil {
				superseded = append(superseded, *prev)
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE document_slots
					SET file_name = NULL, storage_key = NULL, expiry_date = NULL
					WHERE holder_kind = $1 AND holder_id = $2 AND doc_type = $3`,
				string(del.Ref.Kind), del.Ref.ID, string(del.Type),
			); err != nil {
				return nil, err
			}
		}

		for _, up := range cmd.Uploads {
			prev, ok, err := currentStorageKeyTx(ctx, tx, up.Key.Ref, up.Key.Type)
			if err != nil {
				return nil, err
			}
			if !ok {
				// Slot vanished between staging and commit; the blob
				// written for it above has no row to own it.
				superseded = append(superseded, keys[up.Key])
				continue
			}
			key := keys[up.Key]
			if prev != nil && *prev != key {
				superseded = append(superseded, *prev)
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE document_slots
					SET file_name = $1, storage_key = $2
					WHERE holder_kind = $3 AND holder_id = $4 AND doc_type = $5`,
				up.FileName, key, string(up.Key.Ref.Kind), up.Key.Ref.ID, string(up.Key.Type),
			); err != nil {
				return nil, err
			}
		}

		for _, edit := range cmd.ExpiryEdits {
			if _, err := tx.ExecContext(ctx,
				`UPDATE document_slots
					SET expiry_date = $1
					WHERE holder_kind = $2 AND holder_id = $3 AND doc_type = $4`,
				edit.ExpiryDate, string(edit.Key.Ref.Kind), edit.Key.Ref.ID, string(edit.Key.Type),
			); err != nil {
				return nil, err
			}
		}

		return superseded, nil
	})
	if err != nil {
		r.releaseBlobs(ctx, stored)
		return fmt.Errorf("commit documents: %w", err)
	}

	r.releaseBlobs(ctx, superseded)
	r.logger.Info("staged changes committed",
		"deletions", len(cmd.Deletions),
		"uploads", len(cmd.Uploads),
		"expiry_edits", len(cmd.ExpiryEdits),
	)
	return nil
}

// AllHolders returns every holder with its full checklist, ordered by
// creation time within each kind. The ordering is stable so downstream
// consumers produce deterministic output.
func (r *repo) AllHolders(ctx context.Context) ([]HolderDocuments, error) {
	var holders []HolderDocuments

	trucks, err := repository.QueryMany(ctx, r.db,
		`SELECT id, plate FROM trucks ORDER BY created_at ASC`, nil, scanHolderIdentity)
	if err != nil {
		return nil, fmt.Errorf("load trucks: %w", err)
	}
	for _, t := range trucks {
		holders = append(holders, HolderDocuments{Kind: KindTruck, ID: t.id, Name: t.name})
	}

	trailers, err := repository.QueryMany(ctx, r.db,
		`SELECT id, plate FROM trailers ORDER BY created_at ASC`, nil, scanHolderIdentity)
	if err != nil {
		return nil, fmt.Errorf("load trailers: %w", err)
	}
	for _, t := range trailers {
		holders = append(holders, HolderDocuments{Kind: KindTrailer, ID: t.id, Name: t.name})
	}

	drivers, err := repository.QueryMany(ctx, r.db,
		`SELECT id, name FROM drivers ORDER BY created_at ASC`, nil, scanHolderIdentity)
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	for _, d := range drivers {
		holders = append(holders, HolderDocuments{Kind: KindDriver, ID: d.id, Name: d.name})
	}

	for i := range holders {
		slots, err := r.ListSlots(ctx, HolderRef{Kind: holders[i].Kind, ID: holders[i].ID})
		if err != nil {
			return nil, err
		}
		holders[i].Slots = slots
	}

	if holders == nil {
		holders = []HolderDocuments{}
	}
	return holders, nil
}

type holderIdentity struct {
	id   uuid.UUID
	name string
}

func scanHolderIdentity(s repository.Scanner) (holderIdentity, error) {
	var h holderIdentity
	err := s.Scan(&h.id, &h.name)
	return h, err
}

func scanSlot(s repository.Scanner) (catalog.Slot, error) {
	var slot catalog.Slot
	if err := s.Scan(&slot.Type, &slot.FileName, &slot.StorageKey, &slot.ExpiryDate); err != nil {
		return catalog.Slot{}, err
	}
	slot.Label = catalog.Label(slot.Type)
	return slot, nil
}

// currentStorageKey loads the slot's storage key. The second return reports
// whether the slot row exists at all.
func (r *repo) currentStorageKey(ctx context.Context, ref HolderRef, docType catalog.DocumentType) (*string, bool, error) {
	return currentStorageKeyTx(ctx, r.db, ref, docType)
}

func currentStorageKeyTx(ctx context.Context, q repository.Querier, ref HolderRef, docType catalog.DocumentType) (*string, bool, error) {
	var key *string
	err := q.QueryRowContext(ctx,
		`SELECT storage_key FROM document_slots WHERE holder_kind = $1 AND holder_id = $2 AND doc_type = $3`,
		string(ref.Kind), ref.ID, string(docType),
	).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot: %w", err)
	}
	return key, true, nil
}

func insertDefaultSlots(ctx context.Context, tx *sql.Tx, kind HolderKind, id uuid.UUID) error {
	for i, docType := range kind.Catalog() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_slots(holder_kind, holder_id, doc_type, position) VALUES($1, $2, $3, $4)`,
			string(kind), id, string(docType), i,
		); err != nil {
			return fmt.Errorf("insert slot %s: %w", docType, err)
		}
	}
	return nil
}

func slotStorageKeys(ctx context.Context, tx *sql.Tx, kind HolderKind, id uuid.UUID) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT storage_key FROM document_slots WHERE holder_kind = $1 AND holder_id = $2 AND storage_key IS NOT NULL`,
		string(kind), id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// releaseBlobs removes superseded or orphaned blobs. Failures are logged and
// swallowed; a stranded blob never fails the metadata operation that
// released it.
func (r *repo) releaseBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			r.logger.Warn("blob release failed", "key", key, "error", err)
		}
	}
}
