// Package fleet owns the compliance entities: trucks, trailers, drivers, and
// the vehicle sets that pair a truck with a trailer into one operational rig.
// Every entity carries its document checklist; all mutation of entities and
// their document slots enters through the System interface.
package fleet

import (
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/google/uuid"
)

// Ownership identifies whether an entity belongs to the operating company or
// to a third-party supplier.
type Ownership string

// Ownership categories.
const (
	OwnershipAsmira   Ownership = "asmira"
	OwnershipSupplier Ownership = "supplier"
)

// Valid reports whether the ownership is a known category.
func (o Ownership) Valid() bool {
	return o == OwnershipAsmira || o == OwnershipSupplier
}

// HolderKind identifies the entity kind that owns a document checklist.
type HolderKind string

// Holder kinds.
const (
	KindTruck   HolderKind = "truck"
	KindTrailer HolderKind = "trailer"
	KindDriver  HolderKind = "driver"
)

// Catalog returns the document checklist for this holder kind.
func (k HolderKind) Catalog() []catalog.DocumentType {
	if k == KindDriver {
		return catalog.DriverCatalog()
	}
	return catalog.VehicleCatalog()
}

// Valid reports whether the kind is a known holder kind.
func (k HolderKind) Valid() bool {
	return k == KindTruck || k == KindTrailer || k == KindDriver
}

// HolderRef identifies one document holder across kinds. It is the target key
// used by document operations and by staging sessions, where a single editing
// panel may address both sides of a vehicle set.
type HolderRef struct {
	Kind HolderKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Truck represents a tractor unit and its document checklist.
type Truck struct {
	ID        uuid.UUID      `json:"id"`
	Plate     string         `json:"plate"`
	Ownership Ownership      `json:"ownership"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Documents []catalog.Slot `json:"documents,omitempty"`
}

// Trailer represents a trailer unit and its document checklist.
type Trailer struct {
	ID        uuid.UUID      `json:"id"`
	Plate     string         `json:"plate"`
	Ownership Ownership      `json:"ownership"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Documents []catalog.Slot `json:"documents,omitempty"`
}

// Driver represents a driver and their document checklist.
type Driver struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	NationalID string         `json:"national_id"`
	Phone      string         `json:"phone"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Documents  []catalog.Slot `json:"documents,omitempty"`
}

// VehicleSet pairs one truck and one trailer into an operational rig.
// Both references must exist and share the set's ownership at creation time;
// deleting either referenced entity removes the set.
type VehicleSet struct {
	ID        uuid.UUID `json:"id"`
	TruckID   uuid.UUID `json:"truck_id"`
	TrailerID uuid.UUID `json:"trailer_id"`
	Ownership Ownership `json:"ownership"`
	CreatedAt time.Time `json:"created_at"`
}

// ResolvedSet joins a vehicle set to its truck and trailer for display.
type ResolvedSet struct {
	Set     VehicleSet `json:"set"`
	Truck   Truck      `json:"truck"`
	Trailer Trailer    `json:"trailer"`
}

// HolderDocuments is one holder's identity and checklist, as consumed by the
// expiry evaluator and the compliance dashboard.
type HolderDocuments struct {
	Kind  HolderKind     `json:"kind"`
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Slots []catalog.Slot `json:"slots"`
}
