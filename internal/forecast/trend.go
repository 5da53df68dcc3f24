package forecast

import (
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/shopspring/decimal"
)

// ComputeTrends derives per-period trend records from a dense sales series.
// Growth rate is the percentage change from the immediately preceding period,
// defined only when that period sold a positive quantity; the first period of
// a series is always left unclassified. Direction thresholds are +-5%.
func ComputeTrends(series []domain.SalesObservation, medicineID int64, granularity domain.Granularity, unitPrice decimal.Decimal) []domain.TrendRecord {
	records := make([]domain.TrendRecord, 0, len(series))
	for i, obs := range series {
		rec := domain.TrendRecord{
			MedicineID:   medicineID,
			Granularity:  granularity,
			PeriodDate:   obs.PeriodStart,
			QuantitySold: obs.Quantity,
			Revenue:      unitPrice.Mul(decimal.NewFromInt(int64(obs.Quantity))),
			AveragePrice: unitPrice,
		}
		if i > 0 {
			if prev := series[i-1].Quantity; prev > 0 {
				rate := float64(obs.Quantity-prev) / float64(prev) * 100
				dir := classify(rate)
				rec.GrowthRate = &rate
				rec.Direction = &dir
			}
		}
		records = append(records, rec)
	}
	return records
}

func classify(growthRate float64) domain.TrendDirection {
	switch {
	case growthRate > 5:
		return domain.TrendUp
	case growthRate < -5:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}
