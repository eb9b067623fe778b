package services

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/rs/zerolog/log"
)

// ScoringRunSummary reports one run of the supplier scoring job
type ScoringRunSummary struct {
	Suppliers int `json:"suppliers"`
	Written   int `json:"written"`
	Ranked    int `json:"ranked"`
	Errors    int `json:"errors"`
}

// RunSupplierScoring recomputes the month's performance record for every
// supplier with delivery notes planned in the period, then ranks the period.
//
// Phase one computes and upserts each supplier's record independently; a
// failure skips that supplier and the run continues. Phase two runs only
// after every supplier is written: it reads the period back ordered by final
// score and assigns consecutive ranks and categories, so partial writes can
// never skew the ranking.
func (s *ArrivalService) RunSupplierScoring(ctx context.Context, month time.Month, year int) (*ScoringRunSummary, error) {
	txn := s.tracer.StartTransaction("supplier-scoring-run")
	defer s.tracer.EndTransaction(txn)

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	codes, err := s.dnRepo.DistinctSupplierCodes(ctx, from, to)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	summary := &ScoringRunSummary{Suppliers: len(codes)}

	for _, code := range codes {
		if err := s.scoreSupplier(ctx, code, from, to); err != nil {
			log.Error().Err(err).Str("supplier_code", code).Msg("Failed to score supplier, skipping")
			s.tracer.RecordError(txn, err)
			summary.Errors++
			continue
		}
		summary.Written++
	}

	ranked, err := s.rankPeriod(ctx, int(month), year)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return summary, err
	}
	summary.Ranked = ranked

	s.metrics.IncrementCounterBy("scoring.written", int64(summary.Written))
	s.metrics.IncrementCounterBy("scoring.errors", int64(summary.Errors))

	log.Info().
		Int("month", int(month)).
		Int("year", year).
		Int("suppliers", summary.Suppliers).
		Int("written", summary.Written).
		Int("ranked", summary.Ranked).
		Int("errors", summary.Errors).
		Msg("Supplier scoring run finished")

	return summary, nil
}

func (s *ArrivalService) scoreSupplier(ctx context.Context, code string, from, to time.Time) error {
	dnQty, err := s.dnRepo.TotalQuantity(ctx, code, from, to)
	if err != nil {
		return err
	}
	receivedQty, err := s.receiptRepo.TotalReceivedForSupplier(ctx, code, from, to)
	if err != nil {
		return err
	}

	percent := 0.0
	if dnQty > 0 {
		percent = receivedQty / dnQty * 100
	}
	fulfillment := FulfillmentIndex(percent)

	arrivals, err := s.arrivalRepo.ListRegularForPeriod(ctx, code, from, to)
	if err != nil {
		return err
	}

	total := len(arrivals)
	onTime := 0
	deliveryIdx := 0
	delayDaysTotal := 0
	for i := range arrivals {
		switch arrivals[i].Compliance {
		case models.ComplianceOnCommitment:
			onTime++
		case models.ComplianceDelay:
			days, err := s.delayDaysFor(ctx, &arrivals[i])
			if err != nil {
				return err
			}
			deliveryIdx += DelayIndex(days)
			delayDaysTotal += days
		}
	}

	totalIdx := fulfillment + deliveryIdx
	score := FinalScore(totalIdx)

	name, err := s.supplierNames.Get(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("supplier_code", code).Msg("Supplier name unavailable, using code")
		name = code
	}

	record := &models.SupplierPerformance{
		SupplierCode:       code,
		SupplierName:       name,
		Month:              int(from.Month()),
		Year:               from.Year(),
		TotalDeliveries:    total,
		OnTimeDeliveries:   onTime,
		DelayDays:          delayDaysTotal,
		DNQuantity:         dnQty,
		ReceivedQuantity:   receivedQty,
		FulfillmentPercent: percent,
		FulfillmentIndex:   fulfillment,
		DeliveryIndex:      deliveryIdx,
		TotalIndex:         totalIdx,
		FinalScore:         score,
		Grade:              GradeFor(score),
	}

	return s.perfRepo.Upsert(ctx, record)
}

// delayDaysFor computes how many days late a delayed regular arrival was
// caught up: the gap between its rebooked slot's schedule date and its own
// planned date. Zero when no rebooked schedule is found.
func (s *ArrivalService) delayDaysFor(ctx context.Context, arrival *models.Arrival) (int, error) {
	if arrival.PlannedDate == nil {
		return 0, nil
	}

	linked, err := s.arrivalRepo.ListLinkedAdditional(ctx, arrival.ID)
	if err != nil {
		return 0, err
	}

	for i := range linked {
		if linked[i].ScheduleID == nil {
			continue
		}
		sched, err := s.scheduleRepo.GetByID(ctx, *linked[i].ScheduleID)
		if err != nil {
			continue
		}
		if sched.ScheduleDate == nil {
			continue
		}
		days := calendarDaysBetween(*arrival.PlannedDate, *sched.ScheduleDate)
		if days < 0 {
			days = 0
		}
		return days, nil
	}

	return 0, nil
}

// calendarDaysBetween counts whole calendar days from one date to another,
// ignoring the time-of-day and zone offsets of the inputs so a DST transition
// cannot shrink a one-day gap
func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// rankPeriod assigns ranks 1..N by descending final score and the category
// band for every record in the period
func (s *ArrivalService) rankPeriod(ctx context.Context, month, year int) (int, error) {
	records, err := s.perfRepo.ListByPeriodOrdered(ctx, month, year)
	if err != nil {
		return 0, err
	}

	for i := range records {
		records[i].Rank = i + 1
		records[i].Category = CategoryFor(records[i].FinalScore)
		if err := s.perfRepo.Save(ctx, &records[i]); err != nil {
			return i, err
		}

		if s.elasticClient != nil {
			if err := s.elasticClient.IndexPerformanceRecord(ctx, &records[i]); err != nil {
				log.Warn().Err(err).Str("supplier_code", records[i].SupplierCode).Msg("Failed to index performance record")
			}
		}
	}

	return len(records), nil
}

// ListPerformance returns a period's performance records ordered by rank
func (s *ArrivalService) ListPerformance(ctx context.Context, month, year int) ([]models.SupplierPerformance, error) {
	return s.perfRepo.ListByPeriodOrdered(ctx, month, year)
}

// FulfillmentIndex maps a fulfillment percentage to its penalty band
func FulfillmentIndex(percent float64) int {
	switch {
	case percent >= 95:
		return 0
	case percent >= 85:
		return 2
	case percent >= 75:
		return 4
	case percent >= 65:
		return 6
	default:
		return 8
	}
}

// DelayIndex maps the days a delayed delivery was late to its penalty. A
// delayed delivery with no resolvable gap still carries the maximum penalty.
func DelayIndex(days int) int {
	switch days {
	case 1:
		return 2
	case 2:
		return 4
	case 3:
		return 6
	default:
		return 10
	}
}

// FinalScore converts the accumulated penalty indices to a 0-100 score
func FinalScore(totalIndex int) int {
	score := 100 - totalIndex
	if score < 0 {
		return 0
	}
	return score
}

// GradeFor maps a final score to its letter grade
func GradeFor(score int) models.PerformanceGrade {
	switch {
	case score >= 100:
		return models.GradeA
	case score >= 80:
		return models.GradeB
	case score >= 60:
		return models.GradeC
	default:
		return models.GradeD
	}
}

// CategoryFor maps a final score to its ranking category. The category
// bands are intentionally different from the grade bands.
func CategoryFor(score int) models.PerformanceCategory {
	switch {
	case score >= 90:
		return models.CategoryBest
	case score >= 70:
		return models.CategoryMedium
	default:
		return models.CategoryWorst
	}
}
