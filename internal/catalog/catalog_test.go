package catalog_test

import (
	"testing"

	"github.com/asmira/fleetdocs/internal/catalog"
)

func TestVehicleCatalog(t *testing.T) {
	types := catalog.VehicleCatalog()

	if len(types) != 15 {
		t.Fatalf("expected 15 vehicle document types, got %d", len(types))
	}

	if types[0] != catalog.Registration {
		t.Errorf("expected registration first, got %s", types[0])
	}
	if types[len(types)-1] != catalog.TaxPlate {
		t.Errorf("expected tax-plate last, got %s", types[len(types)-1])
	}

	seen := map[catalog.DocumentType]bool{}
	for _, dt := range types {
		if seen[dt] {
			t.Errorf("duplicate document type %s", dt)
		}
		seen[dt] = true
	}
}

func TestDriverCatalog(t *testing.T) {
	types := catalog.DriverCatalog()

	if len(types) != 10 {
		t.Fatalf("expected 10 driver document types, got %d", len(types))
	}

	if types[0] != catalog.IdentityCard {
		t.Errorf("expected id first, got %s", types[0])
	}

	for _, dt := range types {
		if catalog.IsVehicleType(dt) {
			t.Errorf("driver type %s also appears in vehicle catalog", dt)
		}
	}
}

func TestCatalogCopies(t *testing.T) {
	first := catalog.VehicleCatalog()
	first[0] = "mutated"

	second := catalog.VehicleCatalog()
	if second[0] != catalog.Registration {
		t.Error("VehicleCatalog returned shared backing array")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		t    catalog.DocumentType
		want string
	}{
		{"vehicle type", catalog.TrafficInsurance, "Traffic Insurance"},
		{"driver type", catalog.DriverLicense, "Driver License"},
		{"unknown falls back to raw", catalog.DocumentType("mystery"), "mystery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.Label(tt.t); got != tt.want {
				t.Errorf("Label(%s) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}

func TestDefaultSlots(t *testing.T) {
	slots := catalog.DefaultSlots(catalog.DriverCatalog())

	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}

	for i, dt := range catalog.DriverCatalog() {
		if slots[i].Type != dt {
			t.Errorf("slot %d: expected type %s, got %s", i, dt, slots[i].Type)
		}
		if slots[i].Label != catalog.Label(dt) {
			t.Errorf("slot %d: expected label %q, got %q", i, catalog.Label(dt), slots[i].Label)
		}
		if slots[i].Filled() {
			t.Errorf("slot %d: new slot should be empty", i)
		}
		if slots[i].ExpiryDate != nil {
			t.Errorf("slot %d: new slot should have no expiry date", i)
		}
	}
}

func TestSlotFilled(t *testing.T) {
	var slot catalog.Slot
	if slot.Filled() {
		t.Error("empty slot reports filled")
	}

	name := "registration.pdf"
	slot.FileName = &name
	if !slot.Filled() {
		t.Error("slot with file reports empty")
	}
}
