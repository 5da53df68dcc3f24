package inventory

import (
	"testing"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMedicine(price float64) *domain.Medicine {
	return &domain.Medicine{
		ID:        1,
		Name:      "Amoxicillin 500mg",
		UnitPrice: decimal.NewFromFloat(price),
		IsActive:  true,
	}
}

func testRun(point []float64) *domain.ForecastRun {
	return &domain.ForecastRun{
		ID:            10,
		MedicineID:    1,
		Granularity:   domain.GranularityWeekly,
		Horizon:       len(point),
		PointForecast: point,
	}
}

func TestOptimizeConstantDemand(t *testing.T) {
	// Flat demand: zero variance means zero safety stock, and the reorder
	// point is exactly mean lead-time demand.
	run := testRun([]float64{10, 10, 10, 10})
	policy, err := Optimize(run, testMedicine(10), DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, int64(1), policy.MedicineID)
	assert.Equal(t, int64(10), policy.ForecastID)
	assert.Equal(t, 0, policy.SafetyStock)
	assert.Equal(t, 10, policy.ReorderPoint)

	// Annualized demand 520, ordering cost 50, holding cost 2/unit-year:
	// EOQ = sqrt(2*520*50/2) = 161.2, floored.
	assert.Equal(t, 161, policy.OrderQuantity)
	assert.Equal(t, 171, policy.MaxStock)

	// Holding cost Q/2*h = 161; stockout 5% * 520 * 10 * 0.10 = 26.
	assert.True(t, policy.ExpectedHoldingCost.Equal(decimal.NewFromInt(161)))
	assert.True(t, policy.ExpectedStockoutCost.Equal(decimal.NewFromInt(26)))
	assert.True(t, policy.TotalExpectedCost.Equal(decimal.NewFromInt(187)))
}

func TestOptimizeVariableDemandAddsSafetyStock(t *testing.T) {
	run := testRun([]float64{5, 15, 5, 15})
	policy, err := Optimize(run, testMedicine(10), DefaultParams())
	require.NoError(t, err)
	assert.Greater(t, policy.SafetyStock, 0)
	assert.GreaterOrEqual(t, policy.ReorderPoint, 10)
}

func TestOptimizeHigherServiceLevelRaisesReorderPoint(t *testing.T) {
	run := testRun([]float64{5, 15, 5, 15})

	low := DefaultParams()
	low.ServiceLevel = 80
	high := DefaultParams()
	high.ServiceLevel = 99

	lowPolicy, err := Optimize(run, testMedicine(10), low)
	require.NoError(t, err)
	highPolicy, err := Optimize(run, testMedicine(10), high)
	require.NoError(t, err)

	assert.Greater(t, highPolicy.ReorderPoint, lowPolicy.ReorderPoint)
}

func TestOptimizeEOQMonotonicInOrderingCost(t *testing.T) {
	run := testRun([]float64{10, 10, 10, 10})

	cheap := DefaultParams()
	expensive := DefaultParams()
	expensive.OrderingCost = cheap.OrderingCost * 4

	cheapPolicy, err := Optimize(run, testMedicine(10), cheap)
	require.NoError(t, err)
	expensivePolicy, err := Optimize(run, testMedicine(10), expensive)
	require.NoError(t, err)

	// Quadrupling the fixed order cost doubles the EOQ.
	assert.Greater(t, expensivePolicy.OrderQuantity, cheapPolicy.OrderQuantity)
	assert.InDelta(t, 2*float64(cheapPolicy.OrderQuantity), float64(expensivePolicy.OrderQuantity), 1.5)
}

func TestOptimizeParameterValidation(t *testing.T) {
	run := testRun([]float64{10, 10, 10, 10})

	cases := []struct {
		name   string
		mutate func(*Params)
		price  float64
	}{
		{"service level zero", func(p *Params) { p.ServiceLevel = 0 }, 10},
		{"service level hundred", func(p *Params) { p.ServiceLevel = 100 }, 10},
		{"negative lead time", func(p *Params) { p.LeadTimeDays = -1 }, 10},
		{"zero lead time", func(p *Params) { p.LeadTimeDays = 0 }, 10},
		{"free goods have no holding cost", func(p *Params) {}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			tc.mutate(&params)
			_, err := Optimize(run, testMedicine(tc.price), params)
			var invalid *domain.InvalidParameterError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	run := testRun([]float64{8, 12, 9, 11})
	first, err := Optimize(run, testMedicine(4), DefaultParams())
	require.NoError(t, err)
	second, err := Optimize(run, testMedicine(4), DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, first.ReorderPoint, second.ReorderPoint)
	assert.Equal(t, first.OrderQuantity, second.OrderQuantity)
	assert.Equal(t, first.SafetyStock, second.SafetyStock)
	assert.True(t, first.TotalExpectedCost.Equal(second.TotalExpectedCost))
}
