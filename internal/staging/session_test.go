package staging_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/asmira/fleetdocs/internal/staging"
	"github.com/google/uuid"
)

type fakeStore struct {
	slots     map[fleet.DocumentKey]catalog.Slot
	commits   []fleet.CommitCommand
	commitErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{slots: map[fleet.DocumentKey]catalog.Slot{}}
}

func (f *fakeStore) GetSlot(ctx context.Context, ref fleet.HolderRef, docType catalog.DocumentType) (*catalog.Slot, error) {
	slot, ok := f.slots[fleet.DocumentKey{Ref: ref, Type: docType}]
	if !ok {
		return nil, fleet.ErrNotFound
	}
	copied := slot
	return &copied, nil
}

func (f *fakeStore) CommitDocuments(ctx context.Context, cmd fleet.CommitCommand) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, cmd)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func truckKey(docType catalog.DocumentType) fleet.DocumentKey {
	return fleet.DocumentKey{
		Ref:  fleet.HolderRef{Kind: fleet.KindTruck, ID: uuid.New()},
		Type: docType,
	}
}

func TestStageUploadSupersedesDeletion(t *testing.T) {
	manager := staging.NewManager(newFakeStore(), testLogger())
	session := manager.Open()
	key := truckKey(catalog.Registration)

	if err := session.StageDeletion(key); err != nil {
		t.Fatalf("stage deletion: %v", err)
	}
	if err := session.StageUpload(key, "registration.pdf", []byte("pdf")); err != nil {
		t.Fatalf("stage upload: %v", err)
	}

	summary := session.Summarize()
	if summary.Deletions != 0 {
		t.Errorf("upload should supersede deletion, %d deletions remain", summary.Deletions)
	}
	if summary.Uploads != 1 {
		t.Errorf("expected 1 upload, got %d", summary.Uploads)
	}
}

func TestStageDeletionSupersedesUpload(t *testing.T) {
	manager := staging.NewManager(newFakeStore(), testLogger())
	session := manager.Open()
	key := truckKey(catalog.Registration)

	if err := session.StageUpload(key, "registration.pdf", []byte("pdf")); err != nil {
		t.Fatalf("stage upload: %v", err)
	}
	if err := session.StageDeletion(key); err != nil {
		t.Fatalf("stage deletion: %v", err)
	}

	summary := session.Summarize()
	if summary.Uploads != 0 {
		t.Errorf("deletion should supersede upload, %d uploads remain", summary.Uploads)
	}
	if summary.Deletions != 1 {
		t.Errorf("expected 1 deletion, got %d", summary.Deletions)
	}
}

func TestStageExpiryIndependentOfFileLedgers(t *testing.T) {
	manager := staging.NewManager(newFakeStore(), testLogger())
	session := manager.Open()
	key := truckKey(catalog.TrafficInsurance)
	expiry := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	if err := session.StageUpload(key, "insurance.pdf", []byte("pdf")); err != nil {
		t.Fatalf("stage upload: %v", err)
	}
	if err := session.StageExpiry(key, &expiry); err != nil {
		t.Fatalf("stage expiry: %v", err)
	}

	summary := session.Summarize()
	if summary.Uploads != 1 || summary.ExpiryEdits != 1 {
		t.Errorf("expected upload and expiry to coexist, got %d/%d", summary.Uploads, summary.ExpiryEdits)
	}
}

func TestEffectiveSlotOverlay(t *testing.T) {
	store := newFakeStore()
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	key := truckKey(catalog.Registration)
	committed := "old.pdf"
	committedKey := "truck/x/registration/old.pdf"
	committedExpiry := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	store.slots[key] = catalog.Slot{
		Type:       key.Type,
		Label:      catalog.Label(key.Type),
		FileName:   &committed,
		StorageKey: &committedKey,
		ExpiryDate: &committedExpiry,
	}

	ctx := context.Background()

	// No staged changes: committed state passes through.
	slot, err := session.EffectiveSlot(ctx, key)
	if err != nil {
		t.Fatalf("effective slot: %v", err)
	}
	if slot.FileName == nil || *slot.FileName != "old.pdf" {
		t.Error("unstaged effective slot should show committed file")
	}

	// Staged upload overrides the file fields.
	if err := session.StageUpload(key, "new.pdf", []byte("pdf")); err != nil {
		t.Fatalf("stage upload: %v", err)
	}
	slot, err = session.EffectiveSlot(ctx, key)
	if err != nil {
		t.Fatalf("effective slot: %v", err)
	}
	if slot.FileName == nil || *slot.FileName != "new.pdf" {
		t.Error("staged upload should override file name")
	}
	if slot.StorageKey != nil {
		t.Error("staged upload has no storage key before commit")
	}
	if slot.ExpiryDate == nil || !slot.ExpiryDate.Equal(committedExpiry) {
		t.Error("staged upload should leave committed expiry visible")
	}

	// Staged deletion empties the slot.
	if err := session.StageDeletion(key); err != nil {
		t.Fatalf("stage deletion: %v", err)
	}
	slot, err = session.EffectiveSlot(ctx, key)
	if err != nil {
		t.Fatalf("effective slot: %v", err)
	}
	if slot.FileName != nil || slot.StorageKey != nil || slot.ExpiryDate != nil {
		t.Error("staged deletion should show an empty slot")
	}

	// Reads never touched the store's committed state.
	if got := store.slots[key]; got.FileName == nil || *got.FileName != "old.pdf" {
		t.Error("effective reads mutated committed state")
	}
}

func TestCommitBuildsCommandAndClears(t *testing.T) {
	store := newFakeStore()
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	uploadKey := truckKey(catalog.Registration)
	deleteKey := truckKey(catalog.EmissionTest)
	expiryKey := truckKey(catalog.TrafficInsurance)
	expiry := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	session.StageUpload(uploadKey, "registration.pdf", []byte("pdf"))
	session.StageDeletion(deleteKey)
	session.StageExpiry(expiryKey, &expiry)

	if !session.HasPendingChanges() {
		t.Fatal("expected pending changes before commit")
	}

	if err := session.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(store.commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(store.commits))
	}
	cmd := store.commits[0]
	if len(cmd.Deletions) != 1 || cmd.Deletions[0] != deleteKey {
		t.Error("commit missing staged deletion")
	}
	if len(cmd.Uploads) != 1 || cmd.Uploads[0].Key != uploadKey || cmd.Uploads[0].FileName != "registration.pdf" {
		t.Error("commit missing staged upload")
	}
	if len(cmd.ExpiryEdits) != 1 || cmd.ExpiryEdits[0].Key != expiryKey {
		t.Error("commit missing staged expiry edit")
	}

	if session.HasPendingChanges() {
		t.Error("ledgers should clear after commit")
	}
}

func TestDoubleCommitIdempotent(t *testing.T) {
	store := newFakeStore()
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	session.StageUpload(truckKey(catalog.Registration), "registration.pdf", []byte("pdf"))

	if err := session.Commit(context.Background()); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := session.Commit(context.Background()); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	if len(store.commits) != 1 {
		t.Errorf("empty recommit should not reach the store, got %d commits", len(store.commits))
	}
}

func TestCommitFailureKeepsLedgers(t *testing.T) {
	store := newFakeStore()
	store.commitErr = errors.New("database down")
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	session.StageUpload(truckKey(catalog.Registration), "registration.pdf", []byte("pdf"))

	if err := session.Commit(context.Background()); err == nil {
		t.Fatal("expected commit error")
	}
	if !session.HasPendingChanges() {
		t.Error("failed commit should leave ledgers intact for retry")
	}
}

func TestDiscardLeavesStoreUntouched(t *testing.T) {
	store := newFakeStore()
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	session.StageUpload(truckKey(catalog.Registration), "registration.pdf", []byte("pdf"))
	session.StageDeletion(truckKey(catalog.EmissionTest))

	session.Discard()

	if session.HasPendingChanges() {
		t.Error("discard should clear all ledgers")
	}
	if len(store.commits) != 0 {
		t.Error("discard must not contact the store")
	}
}

func TestManagerCloseRefusesPendingChanges(t *testing.T) {
	store := newFakeStore()
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	session.StageUpload(truckKey(catalog.Registration), "registration.pdf", []byte("pdf"))

	err := manager.Close(session.ID(), false)
	if !errors.Is(err, staging.ErrPendingChanges) {
		t.Fatalf("expected ErrPendingChanges, got %v", err)
	}

	// The refused close leaves the session usable.
	if _, err := manager.Get(session.ID()); err != nil {
		t.Errorf("session should survive a refused close: %v", err)
	}

	if err := manager.Close(session.ID(), true); err != nil {
		t.Fatalf("forced close: %v", err)
	}
	if _, err := manager.Get(session.ID()); !errors.Is(err, staging.ErrSessionNotFound) {
		t.Errorf("closed session should be gone, got %v", err)
	}
}

func TestClosedSessionRejectsStaging(t *testing.T) {
	store := newFakeStore()
	manager := staging.NewManager(store, testLogger())
	session := manager.Open()

	if err := manager.Close(session.ID(), false); err != nil {
		t.Fatalf("close: %v", err)
	}

	err := session.StageUpload(truckKey(catalog.Registration), "registration.pdf", []byte("pdf"))
	if !errors.Is(err, staging.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}
