package services

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"
	"example.com/warehouse/services/arrivals/internal/schedule"

	"github.com/rs/zerolog/log"
)

// onTimeWindow is the grace period after the committed instant within which
// an arrival still counts as on time
const onTimeWindow = time.Hour

// StatusRunSummary reports one run of the arrival status job
type StatusRunSummary struct {
	Processed int `json:"processed"`
	OnTime    int `json:"on_time"`
	Delayed   int `json:"delayed"`
	Advanced  int `json:"advanced"`
	Errors    int `json:"errors"`
}

// ClassifyArrival computes the punctuality status of one arrival against its
// resolved commitment. An arrival with no resolvable commitment or no
// warehouse check-in is pending; the security gate check-in alone does not
// count as arriving.
func ClassifyArrival(arrival *models.Arrival, sched *models.SupplierSchedule) models.ArrivalStatus {
	committed, ok := schedule.ResolveCommitment(arrival, sched)
	if !ok || arrival.WarehouseCheckinAt == nil {
		return models.StatusPending
	}

	actual := *arrival.WarehouseCheckinAt
	switch {
	case actual.Before(committed):
		return models.StatusAdvance
	case !actual.Before(committed.Add(onTimeWindow)):
		return models.StatusDelay
	default:
		return models.StatusOnTime
	}
}

// RunArrivalStatus classifies every arrival in the day's window and writes
// the records whose status changed. Re-running against an unchanged record
// set produces zero writes.
func (s *ArrivalService) RunArrivalStatus(ctx context.Context, day time.Time) (*StatusRunSummary, error) {
	txn := s.tracer.StartTransaction("arrival-status-run")
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

	arrivals := append(regulars, additionals...)
	summary := &StatusRunSummary{}

	for i := range arrivals {
		arrival := &arrivals[i]
		if arrival.Status == models.StatusCancelled {
			continue
		}
		summary.Processed++

		sched, err := s.scheduleFor(ctx, arrival)
		if err != nil {
			log.Error().Err(err).Str("arrival_id", arrival.ID.String()).Msg("Failed to load schedule for arrival")
			s.tracer.RecordError(txn, err)
			summary.Errors++
			continue
		}

		next := ClassifyArrival(arrival, sched)
		if next == arrival.Status {
			continue
		}

		if err := s.arrivalRepo.UpdateStatus(ctx, arrival.ID, next); err != nil {
			log.Error().Err(err).Str("arrival_id", arrival.ID.String()).Msg("Failed to update arrival status")
			s.tracer.RecordError(txn, err)
			summary.Errors++
			continue
		}

		switch next {
		case models.StatusOnTime:
			summary.OnTime++
		case models.StatusDelay:
			summary.Delayed++
		case models.StatusAdvance:
			summary.Advanced++
		}
	}

	s.metrics.IncrementCounterBy("status.processed", int64(summary.Processed))
	s.metrics.IncrementCounterBy("status.errors", int64(summary.Errors))

	log.Info().
		Str("day", day.Format("2006-01-02")).
		Int("processed", summary.Processed).
		Int("on_time", summary.OnTime).
		Int("delayed", summary.Delayed).
		Int("advanced", summary.Advanced).
		Int("errors", summary.Errors).
		Msg("Arrival status run finished")

	return summary, nil
}
