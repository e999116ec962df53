package fleet

import (
	"net/url"

	"github.com/asmira/fleetdocs/pkg/query"
	"github.com/asmira/fleetdocs/pkg/repository"
)

var truckProjection = query.NewProjectionMap("public", "trucks", "t").
	Project("id", "Id").
	Project("plate", "Plate").
	Project("ownership", "Ownership").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var trailerProjection = query.NewProjectionMap("public", "trailers", "tr").
	Project("id", "Id").
	Project("plate", "Plate").
	Project("ownership", "Ownership").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var driverProjection = query.NewProjectionMap("public", "drivers", "d").
	Project("id", "Id").
	Project("name", "Name").
	Project("national_id", "NationalId").
	Project("phone", "Phone").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const defaultSort = "CreatedAt"

func scanTruck(s repository.Scanner) (Truck, error) {
	var t Truck
	err := s.Scan(&t.ID, &t.Plate, &t.Ownership, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanTrailer(s repository.Scanner) (Trailer, error) {
	var t Trailer
	err := s.Scan(&t.ID, &t.Plate, &t.Ownership, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanDriver(s repository.Scanner) (Driver, error) {
	var d Driver
	err := s.Scan(&d.ID, &d.Name, &d.NationalID, &d.Phone, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Filters contains optional criteria for filtering entity queries.
type Filters struct {
	Ownership *Ownership
}

// FiltersFromQuery extracts entity filters from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if o := Ownership(values.Get("ownership")); o.Valid() {
		f.Ownership = &o
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Ownership != nil {
		b.WhereEquals("Ownership", string(*f.Ownership))
	}
	return b
}
