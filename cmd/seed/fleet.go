package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/google/uuid"
)

//go:embed seeds/*.json
var seedFiles embed.FS

func init() {
	registerSeeder(&FleetSeeder{})
}

// FleetSeedData represents the JSON structure for fleet seed files.
// Vehicle sets reference their sides by plate so the file stays readable.
type FleetSeedData struct {
	Trucks []struct {
		Plate     string          `json:"plate"`
		Ownership fleet.Ownership `json:"ownership"`
	} `json:"trucks"`
	Trailers []struct {
		Plate     string          `json:"plate"`
		Ownership fleet.Ownership `json:"ownership"`
	} `json:"trailers"`
	Drivers []struct {
		Name       string `json:"name"`
		NationalID string `json:"national_id"`
		Phone      string `json:"phone"`
	} `json:"drivers"`
	VehicleSets []struct {
		TruckPlate   string          `json:"truck_plate"`
		TrailerPlate string          `json:"trailer_plate"`
		Ownership    fleet.Ownership `json:"ownership"`
	} `json:"vehicle_sets"`
}

// FleetSeeder implements Seeder for the demo fleet: trucks, trailers,
// drivers, and vehicle sets, each holder with its empty document checklist.
// It loads seed data from an embedded file or an external file path.
type FleetSeeder struct {
	file string
}

// Name returns "fleet" as the seeder identifier.
func (s *FleetSeeder) Name() string {
	return "fleet"
}

// Description returns a human-readable description of this seeder.
func (s *FleetSeeder) Description() string {
	return "Seeds demo trucks, trailers, drivers, and vehicle sets"
}

// SetFile configures an external seed file path, overriding the embedded default.
func (s *FleetSeeder) SetFile(path string) {
	s.file = path
}

// Seed loads the fleet data and saves every holder with its default slots.
// Existing plates and national ids are reused, so repeated runs are idempotent.
func (s *FleetSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	data, err := s.loadSeedData()
	if err != nil {
		return err
	}

	truckIDs := make(map[string]uuid.UUID, len(data.Trucks))
	for _, t := range data.Trucks {
		id, err := saveVehicle(ctx, tx, "trucks", fleet.KindTruck, t.Plate, t.Ownership)
		if err != nil {
			return fmt.Errorf("save truck %s: %w", t.Plate, err)
		}
		truckIDs[t.Plate] = id
	}

	trailerIDs := make(map[string]uuid.UUID, len(data.Trailers))
	for _, t := range data.Trailers {
		id, err := saveVehicle(ctx, tx, "trailers", fleet.KindTrailer, t.Plate, t.Ownership)
		if err != nil {
			return fmt.Errorf("save trailer %s: %w", t.Plate, err)
		}
		trailerIDs[t.Plate] = id
	}

	for _, d := range data.Drivers {
		if err := saveDriver(ctx, tx, d.Name, d.NationalID, d.Phone); err != nil {
			return fmt.Errorf("save driver %s: %w", d.Name, err)
		}
	}

	for _, set := range data.VehicleSets {
		truckID, ok := truckIDs[set.TruckPlate]
		if !ok {
			return fmt.Errorf("vehicle set references unknown truck plate %s", set.TruckPlate)
		}
		trailerID, ok := trailerIDs[set.TrailerPlate]
		if !ok {
			return fmt.Errorf("vehicle set references unknown trailer plate %s", set.TrailerPlate)
		}
		if err := saveVehicleSet(ctx, tx, truckID, trailerID, set.Ownership); err != nil {
			return fmt.Errorf("save vehicle set %s/%s: %w", set.TruckPlate, set.TrailerPlate, err)
		}
	}

	return nil
}

func (s *FleetSeeder) loadSeedData() (*FleetSeedData, error) {
	var content []byte
	var err error

	if s.file != "" {
		content, err = os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/demo_fleet.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data FleetSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	return &data, nil
}

func saveVehicle(ctx context.Context, tx *sql.Tx, table string, kind fleet.HolderKind, plate string, ownership fleet.Ownership) (uuid.UUID, error) {
	var existing uuid.UUID
	query := fmt.Sprintf(`SELECT id FROM %s WHERE plate = $1`, table)
	err := tx.QueryRowContext(ctx, query, plate).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, err
	}

	id := uuid.New()
	insert := fmt.Sprintf(`INSERT INTO %s (id, plate, ownership) VALUES ($1, $2, $3)`, table)
	if _, err := tx.ExecContext(ctx, insert, id, plate, string(ownership)); err != nil {
		return uuid.Nil, err
	}

	return id, insertSlots(ctx, tx, kind, id)
}

func saveDriver(ctx context.Context, tx *sql.Tx, name, nationalID, phone string) error {
	var existing uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT id FROM drivers WHERE national_id = $1`, nationalID).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	id := uuid.New()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO drivers (id, name, national_id, phone) VALUES ($1, $2, $3, $4)`,
		id, name, nationalID, phone,
	); err != nil {
		return err
	}

	return insertSlots(ctx, tx, fleet.KindDriver, id)
}

func saveVehicleSet(ctx context.Context, tx *sql.Tx, truckID, trailerID uuid.UUID, ownership fleet.Ownership) error {
	var existing uuid.UUID
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM vehicle_sets WHERE truck_id = $1 AND trailer_id = $2`,
		truckID, trailerID,
	).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO vehicle_sets (id, truck_id, trailer_id, ownership) VALUES ($1, $2, $3, $4)`,
		uuid.New(), truckID, trailerID, string(ownership),
	)
	return err
}

func insertSlots(ctx context.Context, tx *sql.Tx, kind fleet.HolderKind, id uuid.UUID) error {
	for i, docType := range kind.Catalog() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_slots (holder_kind, holder_id, doc_type, position) VALUES ($1, $2, $3, $4)`,
			string(kind), id, string(docType), i,
		); err != nil {
			return fmt.Errorf("insert slot %s: %w", docType, err)
		}
	}
	return nil
}
