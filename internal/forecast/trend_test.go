package forecast

import (
	"testing"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(day int, qty int) domain.SalesObservation {
	return domain.SalesObservation{
		PeriodStart: time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC),
		Quantity:    qty,
	}
}

func TestComputeTrendsGrowthRates(t *testing.T) {
	price := decimal.NewFromFloat(2.50)
	series := []domain.SalesObservation{
		obs(1, 100),
		obs(2, 110), // +10%
		obs(3, 110), // 0%
		obs(4, 99),  // -10%
	}

	records := ComputeTrends(series, 7, domain.GranularityDaily, price)
	require.Len(t, records, 4)

	// The first period has nothing to compare against.
	assert.Nil(t, records[0].GrowthRate)
	assert.Nil(t, records[0].Direction)

	require.NotNil(t, records[1].GrowthRate)
	assert.InDelta(t, 10, *records[1].GrowthRate, 1e-9)
	assert.Equal(t, domain.TrendUp, *records[1].Direction)

	assert.InDelta(t, 0, *records[2].GrowthRate, 1e-9)
	assert.Equal(t, domain.TrendStable, *records[2].Direction)

	assert.InDelta(t, -10, *records[3].GrowthRate, 1e-9)
	assert.Equal(t, domain.TrendDown, *records[3].Direction)

	assert.True(t, records[0].Revenue.Equal(decimal.NewFromInt(250)))
	assert.True(t, records[0].AveragePrice.Equal(price))
	assert.Equal(t, int64(7), records[0].MedicineID)
}

func TestComputeTrendsZeroPreviousPeriod(t *testing.T) {
	series := []domain.SalesObservation{
		obs(1, 10),
		obs(2, 0),
		obs(3, 5), // previous period sold nothing: growth undefined
	}

	records := ComputeTrends(series, 1, domain.GranularityDaily, decimal.NewFromInt(1))
	require.Len(t, records, 3)

	require.NotNil(t, records[1].GrowthRate)
	assert.InDelta(t, -100, *records[1].GrowthRate, 1e-9)
	assert.Equal(t, domain.TrendDown, *records[1].Direction)

	assert.Nil(t, records[2].GrowthRate)
	assert.Nil(t, records[2].Direction)
}

func TestComputeTrendsDirectionThresholds(t *testing.T) {
	// Exactly +-5% is still stable; the direction flips beyond it.
	assert.Equal(t, domain.TrendStable, classify(5))
	assert.Equal(t, domain.TrendStable, classify(-5))
	assert.Equal(t, domain.TrendUp, classify(5.01))
	assert.Equal(t, domain.TrendDown, classify(-5.01))
}
