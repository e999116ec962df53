package catalog

import "time"

// Slot is one document-type position within a holder's checklist.
// A slot is empty when no file has been uploaded; FileName and StorageKey are
// always both set or both nil. ExpiryDate is orthogonal to the file fields and
// may be set on an empty slot ahead of an expected upload.
type Slot struct {
	Type       DocumentType `json:"type"`
	Label      string       `json:"label"`
	FileName   *string      `json:"file_name,omitempty"`
	StorageKey *string      `json:"storage_key,omitempty"`
	ExpiryDate *time.Time   `json:"expiry_date,omitempty"`
}

// Filled reports whether a file has been uploaded to this slot.
func (s *Slot) Filled() bool {
	return s.FileName != nil
}

// DefaultSlots builds one empty slot per catalog entry, preserving catalog order.
func DefaultSlots(types []DocumentType) []Slot {
	slots := make([]Slot, len(types))
	for i, t := range types {
		slots[i] = Slot{
			Type:  t,
			Label: Label(t),
		}
	}
	return slots
}
