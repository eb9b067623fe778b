// Package schedule resolves the committed arrival instant a delivery should
// be judged against, from the arrival record and its supplier schedule.
package schedule

import (
	"strings"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"
)

// Layouts accepted for schedule and planned time values. Upstream systems
// deliver these as strings in more than one shape.
var (
	clockLayouts = []string{"15:04:05", "15:04"}

	datetimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02 15:04",
	}
)

// ResolveCommitment resolves the single scheduled date and time an arrival is
// compared against. The second return value is false when no commitment can
// be resolved; callers must treat such arrivals as pending.
//
// The scheduled date is the rebooked schedule date for an additional arrival,
// otherwise the planned delivery date, falling back to the warehouse check-in
// date. The scheduled time comes from the schedule's arrival time when
// present, otherwise from the arrival's own planned time.
func ResolveCommitment(arrival *models.Arrival, sched *models.SupplierSchedule) (time.Time, bool) {
	date, ok := resolveDate(arrival, sched)
	if !ok {
		return time.Time{}, false
	}

	raw := ""
	if sched != nil && sched.ArrivalTime != "" {
		raw = sched.ArrivalTime
	} else {
		raw = arrival.PlannedTime
	}
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}

	return CombineDateTime(date, raw)
}

func resolveDate(arrival *models.Arrival, sched *models.SupplierSchedule) (time.Time, bool) {
	if arrival.Kind == models.KindAdditional && sched != nil && sched.ScheduleDate != nil {
		return *sched.ScheduleDate, true
	}
	if arrival.PlannedDate != nil {
		return *arrival.PlannedDate, true
	}
	if arrival.WarehouseCheckinAt != nil {
		return *arrival.WarehouseCheckinAt, true
	}
	return time.Time{}, false
}

// CombineDateTime combines a resolved date with a raw time value. A bare
// time-of-day is placed on the date; a full date+time value is re-dated onto
// it, discarding its own date portion. Anything else is tried as a bare
// time-of-day appended to the date.
func CombineDateTime(date time.Time, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return onDate(date, t), true
		}
	}

	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return onDate(date, t), true
		}
	}

	// Unrecognized shape: treat it as a time-of-day appended to the date
	combined := date.Format("2006-01-02") + " " + raw
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, combined); err == nil {
			return onDate(date, t), true
		}
	}

	return time.Time{}, false
}

func onDate(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local)
}
