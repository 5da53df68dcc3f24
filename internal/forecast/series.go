package forecast

import (
	"sort"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
)

func unixDate(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// BuildSeries aggregates raw order lines for a single medicine into a dense,
// regularly spaced sales series at the requested granularity. Every period
// between the earliest and latest observed period is present; periods with no
// sales carry quantity 0. Returns DataError when there are no source rows,
// since an empty result has no anchor dates to span.
func BuildSeries(lines []domain.OrderLine, medicineID int64, granularity domain.Granularity) ([]domain.SalesObservation, error) {
	totals := make(map[int64]int)
	for _, line := range lines {
		if line.MedicineID != medicineID {
			continue
		}
		period := granularity.Truncate(line.CreatedAt)
		totals[period.Unix()] += line.Quantity
	}

	if len(totals) == 0 {
		return nil, &domain.DataError{MedicineID: medicineID, Granularity: granularity}
	}

	keys := make([]int64, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	first := unixDate(keys[0])
	last := unixDate(keys[len(keys)-1])

	var series []domain.SalesObservation
	for period := first; !period.After(last); period = granularity.Next(period) {
		series = append(series, domain.SalesObservation{
			PeriodStart: period,
			Quantity:    totals[period.Unix()],
		})
	}
	return series, nil
}

// Quantities extracts the numeric series model fitting operates on.
func Quantities(series []domain.SalesObservation) []float64 {
	out := make([]float64, len(series))
	for i, obs := range series {
		out[i] = float64(obs.Quantity)
	}
	return out
}
