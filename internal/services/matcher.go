package services

import (
	"context"
	"strings"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncDirection selects which gate timestamp a visitor sync run writes
type SyncDirection string

const (
	// SyncCheckin writes security check-in timestamps
	SyncCheckin SyncDirection = "checkin"
	// SyncCheckout writes security checkout timestamps
	SyncCheckout SyncDirection = "checkout"
)

// VisitorSyncSummary reports one run of the visitor reconciliation job
type VisitorSyncSummary struct {
	Events    int `json:"events"`
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Unmatched int `json:"unmatched"`
	Errors    int `json:"errors"`
}

// RunVisitorSync reconciles the day's checkpoint visits against arrival
// records and copies gate timestamps onto the matches.
//
// Matching is two-tier: first the candidates for the visit's date and
// supplier are filtered by driver name, vehicle plate and, when the visit
// carries one, planned time; if that yields nothing the planned-time filter
// is dropped and the identity filters retried. Name and plate comparison
// accepts exact or normalized equality. When several arrivals satisfy every
// filter, all of them are updated.
func (s *ArrivalService) RunVisitorSync(ctx context.Context, day time.Time, direction SyncDirection) (*VisitorSyncSummary, error) {
	txn := s.tracer.StartTransaction("visitor-sync-run")
	defer s.tracer.EndTransaction(txn)

	var (
		events []models.VisitorLog
		err    error
	)
	if direction == SyncCheckout {
		events, err = s.visitorRepo.ListCheckoutsOn(ctx, day)
	} else {
		events, err = s.visitorRepo.ListCheckinsOn(ctx, day)
	}
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	summary := &VisitorSyncSummary{Events: len(events)}

	for i := range events {
		event := &events[i]
		if !usableEvent(event) {
			log.Debug().Str("record_id", event.RecordID).Msg("Skipping visit with missing identity fields")
			continue
		}

		if err := s.syncOneVisit(ctx, event, day, direction, summary); err != nil {
			log.Error().Err(err).Str("record_id", event.RecordID).Msg("Failed to sync visit")
			s.tracer.RecordError(txn, err)
			summary.Errors++
		}
	}

	s.metrics.IncrementCounterBy("visitor."+string(direction)+".processed", int64(summary.Processed))
	s.metrics.IncrementCounterBy("visitor."+string(direction)+".unmatched", int64(summary.Unmatched))

	log.Info().
		Str("day", day.Format("2006-01-02")).
		Str("direction", string(direction)).
		Int("events", summary.Events).
		Int("processed", summary.Processed).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("unmatched", summary.Unmatched).
		Int("errors", summary.Errors).
		Msg("Visitor sync run finished")

	return summary, nil
}

func (s *ArrivalService) syncOneVisit(ctx context.Context, event *models.VisitorLog, day time.Time, direction SyncDirection, summary *VisitorSyncSummary) error {
	candidates, err := s.arrivalRepo.ListMatchCandidates(ctx, day, event.SupplierCode, direction == SyncCheckout)
	if err != nil {
		return err
	}

	matched := matchArrivals(candidates, event, true)
	if len(matched) == 0 && event.PlannedTime != "" {
		// Relaxed fallback: same identity filters without the planned time
		matched = matchArrivals(candidates, event, false)
	}

	if len(matched) == 0 {
		summary.Unmatched++
		return nil
	}

	for _, arrival := range matched {
		summary.Processed++
		if s.applyVisit(arrival, event, direction) {
			if err := s.arrivalRepo.Save(ctx, arrival); err != nil {
				return err
			}
			summary.Updated++
		} else {
			summary.Skipped++
		}
	}
	return nil
}

// applyVisit copies the visit's data onto an arrival and reports whether
// anything changed
func (s *ArrivalService) applyVisit(arrival *models.Arrival, event *models.VisitorLog, direction SyncDirection) bool {
	changed := false

	if arrival.VisitorRecordID == nil && validRecordID(event.RecordID) {
		recordID := event.RecordID
		arrival.VisitorRecordID = &recordID
		changed = true
	}

	switch direction {
	case SyncCheckin:
		if arrival.SecurityCheckinAt == nil && event.CheckinAt != nil {
			checkin := *event.CheckinAt
			arrival.SecurityCheckinAt = &checkin
			changed = true
		}
	case SyncCheckout:
		if arrival.SecurityCheckoutAt == nil && event.CheckoutAt != nil {
			checkout := *event.CheckoutAt
			arrival.SecurityCheckoutAt = &checkout
			if arrival.SecurityCheckinAt != nil {
				minutes := int64(checkout.Sub(*arrival.SecurityCheckinAt).Minutes())
				arrival.SecurityDurationMin = &minutes
			}
			changed = true
		}
	}

	return changed
}

// matchArrivals filters candidates by driver and plate identity, and by
// planned time when strict and the event carries one
func matchArrivals(candidates []models.Arrival, event *models.VisitorLog, strict bool) []*models.Arrival {
	var matched []*models.Arrival
	for i := range candidates {
		arrival := &candidates[i]
		if !driverEqual(arrival.DriverName, event.DriverName) {
			continue
		}
		if !plateEqual(arrival.VehiclePlate, event.VehiclePlate) {
			continue
		}
		if strict && event.PlannedTime != "" && !clockEqual(arrival.PlannedTime, event.PlannedTime) {
			continue
		}
		matched = append(matched, arrival)
	}
	return matched
}

func usableEvent(event *models.VisitorLog) bool {
	return strings.TrimSpace(event.SupplierCode) != "" &&
		strings.TrimSpace(event.DriverName) != "" &&
		strings.TrimSpace(event.VehiclePlate) != ""
}

// validRecordID reports whether an external record identifier is worth
// storing: non-empty and non-zero
func validRecordID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != "0"
}

// driverEqual accepts exact equality or case-insensitive equality of the
// trimmed names
func driverEqual(a, b string) bool {
	if a == b {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// plateEqual accepts exact equality or equality after uppercasing and
// stripping whitespace
func plateEqual(a, b string) bool {
	if a == b {
		return true
	}
	return normalizePlate(a) == normalizePlate(b)
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}

// clockEqual compares two planned time-of-day values, tolerating the
// "15:04" and "15:04:05" shapes interchangeably
func clockEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b {
		return true
	}
	ta, okA := parseClock(a)
	tb, okB := parseClock(b)
	return okA && okB && ta == tb
}

func parseClock(raw string) (string, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}
