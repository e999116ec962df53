package expiry_test

import (
	"testing"
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/expiry"
	"github.com/asmira/fleetdocs/internal/fleet"
	"github.com/google/uuid"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func holderWithSlot(kind fleet.HolderKind, name string, docType catalog.DocumentType, expiry *time.Time) fleet.HolderDocuments {
	return fleet.HolderDocuments{
		Kind: kind,
		ID:   uuid.New(),
		Name: name,
		Slots: []catalog.Slot{
			{Type: docType, Label: catalog.Label(docType), ExpiryDate: expiry},
		},
	}
}

func TestEvaluateWindowBoundaries(t *testing.T) {
	today := date(2026, time.March, 1)

	tests := []struct {
		name     string
		expiry   time.Time
		wantIn   bool
		wantDays int
	}{
		{"expires today", date(2026, time.March, 1), true, 0},
		{"one day out", date(2026, time.March, 2), true, 1},
		{"warning boundary included", date(2026, time.March, 16), true, 15},
		{"beyond warning excluded", date(2026, time.March, 17), false, 0},
		{"one day past", date(2026, time.February, 28), true, -1},
		{"grace boundary included", date(2026, time.February, 22), true, -7},
		{"beyond grace excluded", date(2026, time.February, 21), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holders := []fleet.HolderDocuments{
				holderWithSlot(fleet.KindTruck, "34 DEMO 001", catalog.TrafficInsurance, &tt.expiry),
			}

			alerts := expiry.Evaluate(holders, today, 15, 7)

			if !tt.wantIn {
				if len(alerts) != 0 {
					t.Fatalf("expected no alerts, got %d", len(alerts))
				}
				return
			}

			if len(alerts) != 1 {
				t.Fatalf("expected 1 alert, got %d", len(alerts))
			}
			if alerts[0].DaysLeft != tt.wantDays {
				t.Errorf("expected %d days left, got %d", tt.wantDays, alerts[0].DaysLeft)
			}
		})
	}
}

func TestEvaluateExpiredDocument(t *testing.T) {
	today := date(2026, time.February, 18)
	expired := date(2026, time.February, 15)

	holders := []fleet.HolderDocuments{
		holderWithSlot(fleet.KindDriver, "Murat Aydin", catalog.HealthExam, &expired),
	}

	alerts := expiry.Evaluate(holders, today, 15, 7)

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].DaysLeft != -3 {
		t.Errorf("expected -3 days left, got %d", alerts[0].DaysLeft)
	}
	if alerts[0].HolderName != "Murat Aydin" {
		t.Errorf("expected holder name carried onto alert, got %q", alerts[0].HolderName)
	}
	if alerts[0].Label != catalog.Label(catalog.HealthExam) {
		t.Errorf("expected label %q, got %q", catalog.Label(catalog.HealthExam), alerts[0].Label)
	}
}

func TestEvaluatePartialDayRoundsUp(t *testing.T) {
	today := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
	expiry6h := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	holders := []fleet.HolderDocuments{
		holderWithSlot(fleet.KindTruck, "34 DEMO 001", catalog.EmissionTest, &expiry6h),
	}

	alerts := expiry.Evaluate(holders, today, 15, 7)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].DaysLeft != 1 {
		t.Errorf("partial remaining day should round up to 1, got %d", alerts[0].DaysLeft)
	}
}

func TestEvaluateSortsAscendingStable(t *testing.T) {
	today := date(2026, time.March, 1)

	in5 := date(2026, time.March, 6)
	expired2 := date(2026, time.February, 27)
	in5Too := date(2026, time.March, 6)

	holders := []fleet.HolderDocuments{
		holderWithSlot(fleet.KindTruck, "first", catalog.Registration, &in5),
		holderWithSlot(fleet.KindTrailer, "overdue", catalog.Registration, &expired2),
		holderWithSlot(fleet.KindDriver, "second", catalog.DriverLicense, &in5Too),
	}

	alerts := expiry.Evaluate(holders, today, 15, 7)

	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	if alerts[0].HolderName != "overdue" {
		t.Errorf("most overdue should sort first, got %q", alerts[0].HolderName)
	}
	// Equal days keep input order.
	if alerts[1].HolderName != "first" || alerts[2].HolderName != "second" {
		t.Errorf("tie order not stable: got %q then %q", alerts[1].HolderName, alerts[2].HolderName)
	}
}

func TestEvaluateSkipsSlotsWithoutExpiry(t *testing.T) {
	today := date(2026, time.March, 1)
	soon := date(2026, time.March, 5)
	name := "registration.pdf"

	holders := []fleet.HolderDocuments{
		{
			Kind: fleet.KindTruck,
			ID:   uuid.New(),
			Name: "34 DEMO 001",
			Slots: []catalog.Slot{
				{Type: catalog.Registration, FileName: &name},
				{Type: catalog.TrafficInsurance, ExpiryDate: &soon},
				{Type: catalog.EmissionTest},
			},
		},
	}

	alerts := expiry.Evaluate(holders, today, 15, 7)

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != catalog.TrafficInsurance {
		t.Errorf("expected traffic-insurance alert, got %s", alerts[0].Type)
	}
}

func TestEvaluateExpiryOnEmptySlot(t *testing.T) {
	today := date(2026, time.March, 1)
	soon := date(2026, time.March, 4)

	// An expiry date staged ahead of the upload still alerts.
	holders := []fleet.HolderDocuments{
		holderWithSlot(fleet.KindTrailer, "34 DEMO 901", catalog.TankInspectionCert, &soon),
	}

	alerts := expiry.Evaluate(holders, today, 15, 7)
	if len(alerts) != 1 {
		t.Fatalf("expected alert for empty slot with expiry, got %d", len(alerts))
	}
}

func TestEvaluateDateEditInsideWarningWindowStaysInFeed(t *testing.T) {
	today := date(2026, time.February, 18)
	edited := date(2026, time.February, 25)

	// A date pushed out to 7 days ahead is still inside the warning window,
	// so the document stays in the feed until the date clears the window.
	holders := []fleet.HolderDocuments{
		holderWithSlot(fleet.KindTruck, "41 TED 350", catalog.PeriodicInspection, &edited),
	}

	alerts := expiry.Evaluate(holders, today, 15, 7)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].DaysLeft != 7 {
		t.Errorf("DaysLeft = %d, want 7", alerts[0].DaysLeft)
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	alerts := expiry.Evaluate(nil, date(2026, time.March, 1), 15, 7)
	if alerts == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(alerts))
	}
}
