package fleet

import (
	"context"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/pkg/pagination"
	"github.com/google/uuid"
)

// System defines the entity store operations. All entity and document-slot
// mutation enters through this interface; direct field assignment from outside
// the store is a contract violation.
//
// Mutations addressing an unknown entity ID are silent no-ops rather than
// errors, so callers racing a deletion cannot crash on a stale reference.
type System interface {
	CreateTruck(ctx context.Context, cmd CreateTruckCommand) (*Truck, error)
	GetTruck(ctx context.Context, id uuid.UUID) (*Truck, error)
	ListTrucks(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Truck], error)
	UpdateTruck(ctx context.Context, id uuid.UUID, cmd UpdateTruckCommand) error
	DeleteTruck(ctx context.Context, id uuid.UUID) error

	CreateTrailer(ctx context.Context, cmd CreateTrailerCommand) (*Trailer, error)
	GetTrailer(ctx context.Context, id uuid.UUID) (*Trailer, error)
	ListTrailers(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Trailer], error)
	UpdateTrailer(ctx context.Context, id uuid.UUID, cmd UpdateTrailerCommand) error
	DeleteTrailer(ctx context.Context, id uuid.UUID) error

	CreateDriver(ctx context.Context, cmd CreateDriverCommand) (*Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error)
	ListDrivers(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Driver], error)
	UpdateDriver(ctx context.Context, id uuid.UUID, cmd UpdateDriverCommand) error
	DeleteDriver(ctx context.Context, id uuid.UUID) error

	CreateVehicleSet(ctx context.Context, cmd CreateVehicleSetCommand) (*VehicleSet, error)
	DeleteVehicleSet(ctx context.Context, id uuid.UUID) error
	ResolveVehicleSets(ctx context.Context, ownership *Ownership) ([]ResolvedSet, error)

	UploadDocument(ctx context.Context, ref HolderRef, docType catalog.DocumentType, cmd UploadCommand) error
	UpdateDocument(ctx context.Context, ref HolderRef, docType catalog.DocumentType, cmd UpdateDocumentCommand) error
	DeleteDocument(ctx context.Context, ref HolderRef, docType catalog.DocumentType) error
	GetSlot(ctx context.Context, ref HolderRef, docType catalog.DocumentType) (*catalog.Slot, error)
	ListSlots(ctx context.Context, ref HolderRef) ([]catalog.Slot, error)

	CommitDocuments(ctx context.Context, cmd CommitCommand) error
	AllHolders(ctx context.Context) ([]HolderDocuments, error)
}
