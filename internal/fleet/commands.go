package fleet

import (
	"fmt"
	"strings"
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
)

// CreateTruckCommand contains the data required to register a truck.
type CreateTruckCommand struct {
	Plate     string    `json:"plate"`
	Ownership Ownership `json:"ownership"`
}

// Validate checks the command for structural problems. Duplicate plates are a
// caller-side policy and deliberately not checked here.
func (c *CreateTruckCommand) Validate() error {
	if strings.TrimSpace(c.Plate) == "" {
		return fmt.Errorf("%w: plate required", ErrInvalid)
	}
	if !c.Ownership.Valid() {
		return fmt.Errorf("%w: unknown ownership %q", ErrInvalid, c.Ownership)
	}
	return nil
}

// UpdateTruckCommand contains the fields that can be modified on a truck.
// Nil fields are left unchanged.
type UpdateTruckCommand struct {
	Plate     *string    `json:"plate,omitempty"`
	Ownership *Ownership `json:"ownership,omitempty"`
}

// CreateTrailerCommand contains the data required to register a trailer.
type CreateTrailerCommand struct {
	Plate     string    `json:"plate"`
	Ownership Ownership `json:"ownership"`
}

// Validate checks the command for structural problems.
func (c *CreateTrailerCommand) Validate() error {
	if strings.TrimSpace(c.Plate) == "" {
		return fmt.Errorf("%w: plate required", ErrInvalid)
	}
	if !c.Ownership.Valid() {
		return fmt.Errorf("%w: unknown ownership %q", ErrInvalid, c.Ownership)
	}
	return nil
}

// UpdateTrailerCommand contains the fields that can be modified on a trailer.
type UpdateTrailerCommand struct {
	Plate     *string    `json:"plate,omitempty"`
	Ownership *Ownership `json:"ownership,omitempty"`
}

// CreateDriverCommand contains the data required to register a driver.
type CreateDriverCommand struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
}

// Validate checks the command for structural problems.
func (c *CreateDriverCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalid)
	}
	if strings.TrimSpace(c.NationalID) == "" {
		return fmt.Errorf("%w: national_id required", ErrInvalid)
	}
	return nil
}

// UpdateDriverCommand contains the fields that can be modified on a driver.
type UpdateDriverCommand struct {
	Name       *string `json:"name,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// CreateVehicleSetCommand pairs a truck and trailer into a rig.
type CreateVehicleSetCommand struct {
	TruckID   string    `json:"truck_id"`
	TrailerID string    `json:"trailer_id"`
	Ownership Ownership `json:"ownership"`
}

// UploadCommand carries an uploaded file destined for a document slot.
// Data holds the raw file bytes to be stored.
type UploadCommand struct {
	FileName string
	Data     []byte
}

// UpdateDocumentCommand sets or clears a slot's expiry date.
// A nil ExpiryDate clears the date; the file fields are never touched.
type UpdateDocumentCommand struct {
	ExpiryDate *time.Time `json:"expiry_date"`
}

// DocumentKey addresses one document slot on one holder.
type DocumentKey struct {
	Ref  HolderRef            `json:"ref"`
	Type catalog.DocumentType `json:"type"`
}

// DocumentUpload is one staged upload inside a CommitCommand.
type DocumentUpload struct {
	Key      DocumentKey
	FileName string
	Data     []byte
}

// DocumentExpiryEdit is one staged expiry edit inside a CommitCommand.
// A nil ExpiryDate clears the slot's date.
type DocumentExpiryEdit struct {
	Key        DocumentKey
	ExpiryDate *time.Time
}

// CommitCommand is the atomic write-through of one staging session.
// CommitDocuments applies deletions, then uploads, then expiry edits, all
// inside a single transaction.
type CommitCommand struct {
	Deletions   []DocumentKey
	Uploads     []DocumentUpload
	ExpiryEdits []DocumentExpiryEdit
}

// Empty reports whether the command carries no changes.
func (c *CommitCommand) Empty() bool {
	return len(c.Deletions) == 0 && len(c.Uploads) == 0 && len(c.ExpiryEdits) == 0
}
