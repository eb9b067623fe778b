package services

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"
	"example.com/warehouse/services/arrivals/internal/schedule"

	"github.com/rs/zerolog/log"
)

// ComplianceRunSummary reports one run of the delivery compliance job
type ComplianceRunSummary struct {
	Processed    int `json:"processed"`
	OnCommitment int `json:"on_commitment"`
	Delayed      int `json:"delayed"`
	NoShow       int `json:"no_show"`
	CaughtUp     int `json:"caught_up"`
	Errors       int `json:"errors"`
}

// RunDeliveryCompliance evaluates delivery compliance for all regular
// arrivals planned on the given day and all additional arrivals rebooked
// onto it.
//
// The run is two passes. Pass one classifies every regular arrival on its
// own: never delivered and no catch-up delivered either means no_show once
// the planned date has passed; delivered only through its catch-up slot
// means delay; delivered itself means the timeline decides between
// on_commitment and delay. Pass two evaluates the additional arrivals and
// applies the cross-record correction: a catch-up delivery that has checked
// in flips its linked regular record from no_show or incomplete to delay.
// Running the corrections after all regulars are classified keeps the result
// independent of row order when several catch-up slots point at one regular.
//
// A manually force-marked incomplete arrival is never reclassified here;
// only the catch-up correction may move it to delay.
func (s *ArrivalService) RunDeliveryCompliance(ctx context.Context, day time.Time) (*ComplianceRunSummary, error) {
	txn := s.tracer.StartTransaction("delivery-compliance-run")
	defer s.tracer.EndTransaction(txn)

	regulars, err := s.arrivalRepo.ListRegularPlannedOn(ctx, day)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	additionals, err := s.arrivalRepo.ListAdditionalScheduledOn(ctx, day)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	summary := &ComplianceRunSummary{}

	for i := range regulars {
		if err := s.evaluateRegular(ctx, &regulars[i], day, summary); err != nil {
			log.Error().Err(err).Str("arrival_id", regulars[i].ID.String()).Msg("Failed to evaluate regular arrival")
			s.tracer.RecordError(txn, err)
			summary.Errors++
		}
	}

	for i := range additionals {
		if err := s.evaluateAdditional(ctx, &additionals[i], summary); err != nil {
			log.Error().Err(err).Str("arrival_id", additionals[i].ID.String()).Msg("Failed to evaluate additional arrival")
			s.tracer.RecordError(txn, err)
			summary.Errors++
		}
	}

	s.metrics.IncrementCounterBy("compliance.processed", int64(summary.Processed))
	s.metrics.IncrementCounterBy("compliance.errors", int64(summary.Errors))

	log.Info().
		Str("day", day.Format("2006-01-02")).
		Int("processed", summary.Processed).
		Int("on_commitment", summary.OnCommitment).
		Int("delayed", summary.Delayed).
		Int("no_show", summary.NoShow).
		Int("caught_up", summary.CaughtUp).
		Int("errors", summary.Errors).
		Msg("Delivery compliance run finished")

	return summary, nil
}

func (s *ArrivalService) evaluateRegular(ctx context.Context, arrival *models.Arrival, day time.Time, summary *ComplianceRunSummary) error {
	summary.Processed++

	// Manual incomplete override stands until a catch-up delivery resolves it
	if arrival.Compliance == models.ComplianceIncomplete {
		return nil
	}

	delivered := arrival.WarehouseCheckinAt != nil || arrival.CompletedAt != nil

	linkedDelivered := false
	linked, err := s.arrivalRepo.ListLinkedAdditional(ctx, arrival.ID)
	if err != nil {
		return err
	}
	for i := range linked {
		if linked[i].WarehouseCheckinAt != nil {
			linkedDelivered = true
			break
		}
	}

	next := arrival.Compliance
	switch {
	case !delivered && !linkedDelivered:
		if arrival.PlannedDate != nil && !day.Before(*arrival.PlannedDate) {
			next = models.ComplianceNoShow
		}
	case !delivered && linkedDelivered:
		// The goods arrived late via the rebooked slot
		next = models.ComplianceDelay
	default:
		sched, err := s.scheduleFor(ctx, arrival)
		if err != nil {
			return err
		}
		if timeline := evaluateTimeline(arrival, sched); timeline != models.CompliancePending {
			next = timeline
		}
	}

	if next == arrival.Compliance {
		return nil
	}
	if err := s.arrivalRepo.UpdateCompliance(ctx, arrival.ID, next); err != nil {
		return err
	}

	switch next {
	case models.ComplianceOnCommitment:
		summary.OnCommitment++
	case models.ComplianceDelay:
		summary.Delayed++
	case models.ComplianceNoShow:
		summary.NoShow++
	}
	return nil
}

func (s *ArrivalService) evaluateAdditional(ctx context.Context, arrival *models.Arrival, summary *ComplianceRunSummary) error {
	summary.Processed++

	sched, err := s.scheduleFor(ctx, arrival)
	if err != nil {
		return err
	}

	if next := evaluateTimeline(arrival, sched); next != models.CompliancePending && next != arrival.Compliance {
		if err := s.arrivalRepo.UpdateCompliance(ctx, arrival.ID, next); err != nil {
			return err
		}
		switch next {
		case models.ComplianceOnCommitment:
			summary.OnCommitment++
		case models.ComplianceDelay:
			summary.Delayed++
		}
	}

	// Catch-up correction: a delivered rebooked slot turns the original
	// record's no-show (or incomplete) into a documented delay
	if arrival.WarehouseCheckinAt == nil || arrival.RelatedArrivalID == nil {
		return nil
	}

	regular, err := s.arrivalRepo.GetByID(ctx, *arrival.RelatedArrivalID)
	if err != nil {
		return err
	}
	if regular.Compliance != models.ComplianceNoShow && regular.Compliance != models.ComplianceIncomplete {
		return nil
	}

	if err := s.arrivalRepo.UpdateCompliance(ctx, regular.ID, models.ComplianceDelay); err != nil {
		return err
	}
	summary.CaughtUp++

	log.Info().
		Str("arrival_id", regular.ID.String()).
		Str("additional_id", arrival.ID.String()).
		Msg("No-show resolved to delay by catch-up delivery")

	return nil
}

// evaluateTimeline decides compliance from an arrival's own delivery
// timeline: on_commitment inside the committed hour or earlier, delay from
// one hour past the commitment. Pending when the arrival has not been
// delivered or no commitment resolves.
func evaluateTimeline(arrival *models.Arrival, sched *models.SupplierSchedule) models.ComplianceStatus {
	actual := arrival.WarehouseCheckinAt
	if actual == nil {
		actual = arrival.CompletedAt
	}
	if actual == nil {
		return models.CompliancePending
	}

	committed, ok := schedule.ResolveCommitment(arrival, sched)
	if !ok {
		return models.CompliancePending
	}

	if !actual.Before(committed.Add(onTimeWindow)) {
		return models.ComplianceDelay
	}
	return models.ComplianceOnCommitment
}
