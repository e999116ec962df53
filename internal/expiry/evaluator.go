// Package expiry turns document checklists into an alert feed. The evaluator
// is a pure function over holder snapshots; the System wrapper binds it to
// the store and the wall clock.
package expiry

import (
	"math"
	"sort"
	"time"

	"github.com/asmira/fleetdocs/internal/catalog"
	"github.com/asmira/fleetdocs/internal/fleet"
)

// Alert flags one document slot whose expiry date falls inside the alert
// window. DaysLeft is negative for documents already expired.
type Alert struct {
	HolderKind fleet.HolderKind     `json:"holder_kind"`
	HolderName string               `json:"holder_name"`
	Type       catalog.DocumentType `json:"type"`
	Label      string               `json:"label"`
	ExpiryDate time.Time            `json:"expiry_date"`
	DaysLeft   int                  `json:"days_left"`
}

// Evaluate scans every slot of every holder and returns the alerts whose
// days-left fall within [-graceWindowDays, warningWindowDays], sorted
// ascending by days left so the most overdue documents come first. Ties keep
// the input's holder and slot order. Slots without an expiry date are
// skipped, filled or not; a date on an empty slot still alerts.
func Evaluate(holders []fleet.HolderDocuments, today time.Time, warningWindowDays, graceWindowDays int) []Alert {
	alerts := []Alert{}

	for _, holder := range holders {
		for _, slot := range holder.Slots {
			if slot.ExpiryDate == nil {
				continue
			}

			daysLeft := daysBetween(today, *slot.ExpiryDate)
			if daysLeft < -graceWindowDays || daysLeft > warningWindowDays {
				continue
			}

			alerts = append(alerts, Alert{
				HolderKind: holder.Kind,
				HolderName: holder.Name,
				Type:       slot.Type,
				Label:      slot.Label,
				ExpiryDate: *slot.ExpiryDate,
				DaysLeft:   daysLeft,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysLeft < alerts[j].DaysLeft
	})

	return alerts
}

// daysBetween computes whole days from today to the expiry date, rounded up
// so a partial remaining day still counts as a day left.
func daysBetween(today, expiry time.Time) int {
	delta := expiry.Sub(today).Hours() / 24
	return int(math.Ceil(delta))
}
