package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/storage"
	"github.com/asmira/fleetdocs/pkg/pagination"
	"github.com/asmira/fleetdocs/pkg/query"
	"github.com/asmira/fleetdocs/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the entity store backed by the database and blob storage.
func New(db *sql.DB, storage storage.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		storage:    storage,
		logger:     logger.With("system", "fleet"),
		pagination: pagination,
	}
}

func (r *repo) CreateTruck(ctx context.Context, cmd CreateTruckCommand) (*Truck, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	q := `INSERT INTO trucks(id, plate, ownership)
		VALUES($1, $2, $3)
		RETURNING id, plate, ownership, created_at, updated_at`

	truck, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Truck, error) {
		truck, err := repository.QueryOne(ctx, tx, q, []any{id, cmd.Plate, string(cmd.Ownership)}, scanTruck)
		if err != nil {
			return Truck{}, err
		}
		if err := insertDefaultSlots(ctx, tx, KindTruck, id); err != nil {
			return Truck{}, err
		}
		return truck, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	truck.Documents = catalog.DefaultSlots(KindTruck.Catalog())
	r.logger.Info("truck created", "id", truck.ID, "plate", truck.Plate)
	return &truck, nil
}

func (r *repo) GetTruck(ctx context.Context, id uuid.UUID) (*Truck, error) {
	q, args := query.NewBuilder(truckProjection, defaultSort).BuildSingle("Id", id)

	truck, err := repository.QueryOne(ctx, r.db, q, args, scanTruck)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	slots, err := r.ListSlots(ctx, HolderRef{Kind: KindTruck, ID: id})
	if err != nil {
		return nil, err
	}
	truck.Documents = slots
	return &truck, nil
}

func (r *repo) ListTrucks(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Truck], error) {
	return listEntities(ctx, r, page, filters, truckProjection, scanTruck, "Plate")
}

func (r *repo) UpdateTruck(ctx context.Context, id uuid.UUID, cmd UpdateTruckCommand) error {
	if cmd.Ownership != nil && !cmd.Ownership.Valid() {
		return fmt.Errorf("%w: unknown ownership %q", ErrInvalid, *cmd.Ownership)
	}

	q := `UPDATE trucks
		SET plate = COALESCE($1, plate), ownership = COALESCE($2, ownership), updated_at = NOW()
		WHERE id = $3`

	// Unknown ids update nothing; that is the contract, not an error.
	if _, err := r.db.ExecContext(ctx, q, cmd.Plate, ownershipArg(cmd.Ownership), id); err != nil {
		return fmt.Errorf("update truck: %w", err)
	}
	return nil
}

func (r *repo) DeleteTruck(ctx context.Context, id uuid.UUID) error {
	return r.deleteHolder(ctx, KindTruck, id, "trucks")
}

func (r *repo) CreateTrailer(ctx context.Context, cmd CreateTrailerCommand) (*Trailer, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	q := `INSERT INTO trailers(id, plate, ownership)
		VALUES($1, $2, $3)
		RETURNING id, plate, ownership, created_at, updated_at`

	trailer, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Trailer, error) {
		trailer, err := repository.QueryOne(ctx, tx, q, []any{id, cmd.Plate, string(cmd.Ownership)}, scanTrailer)
		if err != nil {
			return Trailer{}, err
		}
		if err := insertDefaultSlots(ctx, tx, KindTrailer, id); err != nil {
			return Trailer{}, err
		}
		return trailer, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	trailer.Documents = catalog.DefaultSlots(KindTrailer.Catalog())
	r.logger.Info("trailer created", "id", trailer.ID, "plate", trailer.Plate)
	return &trailer, nil
}

func (r *repo) GetTrailer(ctx context.Context, id uuid.UUID) (*Trailer, error) {
	q, args := query.NewBuilder(trailerProjection, defaultSort).BuildSingle("Id", id)

	trailer, err := repository.QueryOne(ctx, r.db, q, args, scanTrailer)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	slots, err := r.ListSlots(ctx, HolderRef{Kind: KindTrailer, ID: id})
	if err != nil {
		return nil, err
	}
	trailer.Documents = slots
	return &trailer, nil
}

func (r *repo) ListTrailers(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Trailer], error) {
	return listEntities(ctx, r, page, filters, trailerProjection, scanTrailer, "Plate")
}

func (r *repo) UpdateTrailer(ctx context.Context, id uuid.UUID, cmd UpdateTrailerCommand) error {
	if cmd.Ownership != nil && !cmd.Ownership.Valid() {
		return fmt.Errorf("%w: unknown ownership %q", ErrInvalid, *cmd.Ownership)
	}

	q := `UPDATE trailers
		SET plate = COALESCE($1, plate), ownership = COALESCE($2, ownership), updated_at = NOW()
		WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, q, cmd.Plate, ownershipArg(cmd.Ownership), id); err != nil {
		return fmt.Errorf("update trailer: %w", err)
	}
	return nil
}

func (r *repo) DeleteTrailer(ctx context.Context, id uuid.UUID) error {
	return r.deleteHolder(ctx, KindTrailer, id, "trailers")
}

func (r *repo) CreateDriver(ctx context.Context, cmd CreateDriverCommand) (*Driver, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	q := `INSERT INTO drivers(id, name, national_id, phone)
		VALUES($1, $2, $3, $4)
		RETURNING id, name, national_id, phone, created_at, updated_at`

	driver, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Driver, error) {
		driver, err := repository.QueryOne(ctx, tx, q, []any{id, cmd.Name, cmd.NationalID, cmd.Phone}, scanDriver)
		if err != nil {
			return Driver{}, err
		}
		if err := insertDefaultSlots(ctx, tx, KindDriver, id); err != nil {
			return Driver{}, err
		}
		return driver, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	driver.Documents = catalog.DefaultSlots(KindDriver.Catalog())
	r.logger.Info("driver created", "id", driver.ID, "name", driver.Name)
	return &driver, nil
}

func (r *repo) GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error) {
	q, args := query.NewBuilder(driverProjection, defaultSort).BuildSingle("Id", id)

	driver, err := repository.QueryOne(ctx, r.db, q, args, scanDriver)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	slots, err := r.ListSlots(ctx, HolderRef{Kind: KindDriver, ID: id})
	if err != nil {
		return nil, err
	}
	driver.Documents = slots
	return &driver, nil
}

func (r *repo) ListDrivers(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Driver], error) {
	return listEntities(ctx, r, page, filters, driverProjection, scanDriver, "Name", "NationalId")
}

func (r *repo) UpdateDriver(ctx context.Context, id uuid.UUID, cmd UpdateDriverCommand) error {
	q := `UPDATE drivers
		SET name = COALESCE($1, name),
			national_id = COALESCE($2, national_id),
			phone = COALESCE($3, phone),
			updated_at = NOW()
		WHERE id = $4`

	if _, err := r.db.ExecContext(ctx, q, cmd.Name, cmd.NationalID, cmd.Phone, id); err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	return nil
}

func (r *repo) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	return r.deleteHolder(ctx, KindDriver, id, "drivers")
}

// deleteHolder removes a holder row and its document slots in one transaction.
// Vehicle sets referencing a deleted truck or trailer cascade at the schema
// level. Blob cleanup happens after commit; a failed blob delete is logged,
// never surfaced.
func (r *repo) deleteHolder(ctx context.Context, kind HolderKind, id uuid.UUID, table string) error {
	keys, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]string, error) {
		keys, err := slotStorageKeys(ctx, tx, kind, id)
		if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id); err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM document_slots WHERE holder_kind = $1 AND holder_id = $2`,
			string(kind), id,
		); err != nil {
			return nil, err
		}

		return keys, nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	r.releaseBlobs(ctx, keys)
	r.logger.Info("holder deleted", "kind", kind, "id", id)
	return nil
}

func (r *repo) CreateVehicleSet(ctx context.Context, cmd CreateVehicleSetCommand) (*VehicleSet, error) {
	if !cmd.Ownership.Valid() {
		return nil, fmt.Errorf("%w: unknown ownership %q", ErrInvalid, cmd.Ownership)
	}

	truckID, err := uuid.Parse(cmd.TruckID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid truck_id", ErrInvalid)
	}
	trailerID, err := uuid.Parse(cmd.TrailerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid trailer_id", ErrInvalid)
	}

	id := uuid.New()
	set, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (VehicleSet, error) {
		if err := checkReference(ctx, tx, "trucks", truckID, cmd.Ownership); err != nil {
			return VehicleSet{}, err
		}
		if err := checkReference(ctx, tx, "trailers", trailerID, cmd.Ownership); err != nil {
			return VehicleSet{}, err
		}

		q := `INSERT INTO vehicle_sets(id, truck_id, trailer_id, ownership)
			VALUES($1, $2, $3, $4)
			RETURNING id, truck_id, trailer_id, ownership, created_at`

		return repository.QueryOne(ctx, tx, q, []any{id, truckID, trailerID, string(cmd.Ownership)}, scanVehicleSet)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("vehicle set created", "id", set.ID, "truck_id", truckID, "trailer_id", trailerID)
	return &set, nil
}

func (r *repo) DeleteVehicleSet(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM vehicle_sets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete vehicle set: %w", err)
	}
	return nil
}

func (r *repo) ResolveVehicleSets(ctx context.Context, ownership *Ownership) ([]ResolvedSet, error) {
	q := `SELECT s.id, s.truck_id, s.trailer_id, s.ownership, s.created_at,
			t.id, t.plate, t.ownership, t.created_at, t.updated_at,
			tr.id, tr.plate, tr.ownership, tr.created_at, tr.updated_at
		FROM public.vehicle_sets s
		JOIN public.trucks t ON t.id = s.truck_id
		JOIN public.trailers tr ON tr.id = s.trailer_id`

	args := []any{}
	if ownership != nil {
		q += ` WHERE s.ownership = $1`
		args = append(args, string(*ownership))
	}
	q += ` ORDER BY s.created_at ASC`

	// The inner join is the defensive read path: a set whose truck or trailer
	// vanished out of band drops out of the result instead of erroring.
	sets, err := repository.QueryMany(ctx, r.db, q, args, scanResolvedSet)
	if err != nil {
		return nil, fmt.Errorf("resolve vehicle sets: %w", err)
	}
	if sets == nil {
		sets = []ResolvedSet{}
	}
	return sets, nil
}

func scanVehicleSet(s repository.Scanner) (VehicleSet, error) {
	var v VehicleSet
	err := s.Scan(&v.ID, &v.TruckID, &v.TrailerID, &v.Ownership, &v.CreatedAt)
	return v, err
}

func scanResolvedSet(s repository.Scanner) (ResolvedSet, error) {
	var rs ResolvedSet
	err := s.Scan(
		&rs.Set.ID, &rs.Set.TruckID, &rs.Set.TrailerID, &rs.Set.Ownership, &rs.Set.CreatedAt,
		&rs.Truck.ID, &rs.Truck.Plate, &rs.Truck.Ownership, &rs.Truck.CreatedAt, &rs.Truck.UpdatedAt,
		&rs.Trailer.ID, &rs.Trailer.Plate, &rs.Trailer.Ownership, &rs.Trailer.CreatedAt, &rs.Trailer.UpdatedAt,
	)
	return rs, err
}

// checkReference verifies the referenced entity exists with matching ownership.
func checkReference(ctx context.Context, tx *sql.Tx, table string, id uuid.UUID, ownership Ownership) error {
	var got string
	q := fmt.Sprintf(`SELECT ownership FROM %s WHERE id = $1`, table)
	if err := tx.QueryRowContext(ctx, q, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s %s does not exist", ErrReferential, strings.TrimSuffix(table, "s"), id)
		}
		return err
	}
	if got != string(ownership) {
		return fmt.Errorf("%w: %s %s has ownership %q, set has %q",
			ErrReferential, strings.TrimSuffix(table, "s"), id, got, ownership)
	}
	return nil
}

func ownershipArg(o *Ownership) *string {
	if o == nil {
		return nil
	}
	s := string(*o)
	return &s
}

// listEntities runs the shared paginated listing for one holder kind.
func listEntities[T any](
	ctx context.Context,
	r *repo,
	page pagination.PageRequest,
	filters Filters,
	projection *query.ProjectionMap,
	scan func(repository.Scanner) (T, error),
	searchFields ...string,
) (*pagination.PageResult[T], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, searchFields...).
		OrderBy(page.Sort, page.Descending)

	filters.Apply(qb)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scan)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func buildStorageKey(ref HolderRef, docType catalog.DocumentType, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", ref.Kind, ref.ID, docType, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
