package domain

import (
	"fmt"
	"time"
)

// Granularity is the period size a sales series is aggregated at.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity validates a raw string coming from an API request or CLI flag.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("invalid granularity %q (want daily, weekly or monthly)", s)
	}
}

// PeriodDays is the nominal length of one period in days, used to scale
// lead time against per-period demand.
func (g Granularity) PeriodDays() float64 {
	switch g {
	case GranularityDaily:
		return 1
	case GranularityWeekly:
		return 7
	default:
		return 30
	}
}

// PeriodsPerYear is the annualization factor for demand totals.
func (g Granularity) PeriodsPerYear() float64 {
	switch g {
	case GranularityDaily:
		return 365
	case GranularityWeekly:
		return 52
	default:
		return 12
	}
}

// Truncate maps a timestamp to the start of its period: midnight for daily,
// the ISO week's Monday for weekly, the first of the month for monthly.
// All period arithmetic is done in UTC.
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case GranularityDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the period immediately after the one starting at t.
func (g Granularity) Next(t time.Time) time.Time {
	switch g {
	case GranularityDaily:
		return t.AddDate(0, 0, 1)
	case GranularityWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 1, 0)
	}
}
