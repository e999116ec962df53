// Package staging provides deferred document editing. A session accumulates
// uploads, expiry edits, and deletions against document slots without
// touching the store, then writes everything through in one atomic commit.
// Until commit, the store's committed state is visible to every other reader
// unchanged.
package staging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/google/uuid"
)

// Store is the slice of the entity store a session needs: committed slot
// reads for the overlay, and the atomic write-through at commit.
type Store interface {
	GetSlot(ctx context.Context, ref fleet.HolderRef, docType catalog.DocumentType) (*catalog.Slot, error)
	CommitDocuments(ctx context.Context, cmd fleet.CommitCommand) error
}

type stagedUpload struct {
	fileName string
	data     []byte
}

// Session is one open editing pass over the document store. All methods are
// safe for concurrent use, though the tool is effectively single-user.
type Session struct {
	id    uuid.UUID
	store Store

	mu        sync.Mutex
	uploads   map[fleet.DocumentKey]stagedUpload
	expiries  map[fleet.DocumentKey]*time.Time
	deletions map[fleet.DocumentKey]struct{}
	closed    bool
	createdAt time.Time
}

func newSession(store Store) *Session {
	return &Session{
		id:        uuid.New(),
		store:     store,
		uploads:   make(map[fleet.DocumentKey]stagedUpload),
		expiries:  make(map[fleet.DocumentKey]*time.Time),
		deletions: make(map[fleet.DocumentKey]struct{}),
		createdAt: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// StageUpload records a file destined for a slot. A pending deletion of the
// same slot is superseded; only the latest upload per slot is kept.
func (s *Session) StageUpload(key fleet.DocumentKey, fileName string, data []byte) error {
	if fileName == "" || len(data) == 0 {
		return fmt.Errorf("%w: file name and content required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	delete(s.deletions, key)
	s.uploads[key] = stagedUpload{fileName: fileName, data: data}
	return nil
}

// StageDeletion records a slot reset. A pending upload of the same slot is
// superseded.
func (s *Session) StageDeletion(key fleet.DocumentKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	delete(s.uploads, key)
	s.deletions[key] = struct{}{}
	return nil
}

// StageExpiry records an expiry-date edit. Nil clears the date. Expiry edits
// are independent of the file ledgers; staging one never disturbs a pending
// upload or deletion.
func (s *Session) StageExpiry(key fleet.DocumentKey, expiryDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	s.expiries[key] = expiryDate
	return nil
}

// EffectiveSlot returns the slot as it would look after commit: committed
// state with this session's pending changes overlaid. The read never mutates
// the session or the store.
func (s *Session) EffectiveSlot(ctx context.Context, key fleet.DocumentKey) (*catalog.Slot, error) {
	slot, err := s.store.GetSlot(ctx, key.Ref, key.Type)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	effective := *slot

	if _, ok := s.deletions[key]; ok {
		effective.FileName = nil
		effective.StorageKey = nil
		effective.ExpiryDate = nil
	}

	if up, ok := s.uploads[key]; ok {
		name := up.fileName
		effective.FileName = &name
		// No storage key until commit writes the blob.
		effective.StorageKey = nil
	}

	if expiry, ok := s.expiries[key]; ok {
		effective.ExpiryDate = expiry
	}

	return &effective, nil
}

// HasPendingChanges reports whether any ledger holds uncommitted changes.
func (s *Session) HasPendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Session) pendingLocked() bool {
	return len(s.uploads) > 0 || len(s.expiries) > 0 || len(s.deletions) > 0
}

// Summary describes the session's pending ledgers.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Uploads     int       `json:"uploads"`
	ExpiryEdits int       `json:"expiry_edits"`
	Deletions   int       `json:"deletions"`
	Pending     bool      `json:"pending"`
}

// Summarize returns the pending-change counts for the HTTP surface.
func (s *Session) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		ID:          s.id,
		CreatedAt:   s.createdAt,
		Uploads:     len(s.uploads),
		ExpiryEdits: len(s.expiries),
		Deletions:   len(s.deletions),
		Pending:     s.pendingLocked(),
	}
}

// Commit writes every pending change through the store atomically, then
// clears the ledgers. Committing an empty session is a no-op, so a repeated
// commit changes nothing.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	cmd := s.buildCommitLocked()
	s.mu.Unlock()

	if cmd.Empty() {
		return nil
	}

	// The store is the atomicity boundary; the ledgers survive a failed
	// commit so the user can retry or discard.
	if err := s.store.CommitDocuments(ctx, cmd); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	return nil
}

func (s *Session) buildCommitLocked() fleet.CommitCommand {
	cmd := fleet.CommitCommand{}

	for key := range s.deletions {
		cmd.Deletions = append(cmd.Deletions, key)
	}
	for key, up := range s.uploads {
		cmd.Uploads = append(cmd.Uploads, fleet.DocumentUpload{
			Key:      key,
			FileName: up.fileName,
			Data:     up.data,
		})
	}
	for key, expiry := range s.expiries {
		cmd.ExpiryEdits = append(cmd.ExpiryEdits, fleet.DocumentExpiryEdit{
			Key:        key,
			ExpiryDate: expiry,
		})
	}

	return cmd
}

// Discard drops every pending change without touching the store.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.uploads = make(map[fleet.DocumentKey]stagedUpload)
	s.expiries = make(map[fleet.DocumentKey]*time.Time)
	s.deletions = make(map[fleet.DocumentKey]struct{})
}

// Close marks the session closed and reports whether uncommitted changes
// were pending at the time. It never commits or discards on its own; the
// caller decides what the pending flag means.
func (s *Session) Close() (pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending = s.pendingLocked()
	s.closed = true
	return pending
}
