package service

import (
	"context"
	"testing"

	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInventoryConfig() config.InventoryConfig {
	return config.InventoryConfig{
		ServiceLevel:         95,
		LeadTimeDays:         7,
		HoldingCostPct:       20,
		OrderingCost:         50,
		StockoutCostFraction: 0.10,
	}
}

func newTestSupplyService(medicines *fakeMedicineRepo, policies *fakePolicyRepo, forecasts *ForecastService) *SupplyService {
	return NewSupplyService(medicines, policies, forecasts, testInventoryConfig())
}

func TestOptimizePersistsPolicy(t *testing.T) {
	sales := &fakeSalesRepo{lines: map[int64][]domain.OrderLine{1: weeklyLines(1, 60, 10)}}
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{1: activeMedicine(1)}}
	forecastSvc := newTestForecastService(sales, medicines, newFakeForecastRepo())
	policies := &fakePolicyRepo{}
	svc := newTestSupplyService(medicines, policies, forecastSvc)

	policy, err := svc.Optimize(context.Background(), 1, svc.DefaultParams())
	require.NoError(t, err)

	assert.NotZero(t, policy.ID)
	assert.NotZero(t, policy.ForecastID)
	assert.Equal(t, int64(1), policy.MedicineID)
	assert.Greater(t, policy.OrderQuantity, 0)
	assert.Equal(t, policy.ReorderPoint+policy.OrderQuantity, policy.MaxStock)

	stored, err := policies.LatestPolicy(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, policy.ID, stored.ID)
}

func TestOptimizeFitsForecastWhenNoneStored(t *testing.T) {
	sales := &fakeSalesRepo{lines: map[int64][]domain.OrderLine{1: weeklyLines(1, 60, 10)}}
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{1: activeMedicine(1)}}
	forecasts := newFakeForecastRepo()
	forecastSvc := newTestForecastService(sales, medicines, forecasts)
	svc := newTestSupplyService(medicines, &fakePolicyRepo{}, forecastSvc)

	policy, err := svc.Optimize(context.Background(), 1, svc.DefaultParams())
	require.NoError(t, err)

	// The optimization had to fit and store a forecast first.
	run, err := forecasts.GetForecastRun(context.Background(), policy.ForecastID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, int64(1), run.MedicineID)
}

func TestOptimizeInvalidParams(t *testing.T) {
	sales := &fakeSalesRepo{lines: map[int64][]domain.OrderLine{1: weeklyLines(1, 60, 10)}}
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{1: activeMedicine(1)}}
	forecastSvc := newTestForecastService(sales, medicines, newFakeForecastRepo())
	svc := newTestSupplyService(medicines, &fakePolicyRepo{}, forecastSvc)

	params := svc.DefaultParams()
	params.ServiceLevel = 120
	_, err := svc.Optimize(context.Background(), 1, params)
	var invalid *domain.InvalidParameterError
	require.ErrorAs(t, err, &invalid)
}

func TestOptimizeMedicineNotFound(t *testing.T) {
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{}}
	forecastSvc := newTestForecastService(&fakeSalesRepo{}, medicines, newFakeForecastRepo())
	svc := newTestSupplyService(medicines, &fakePolicyRepo{}, forecastSvc)

	_, err := svc.Optimize(context.Background(), 7, svc.DefaultParams())
	assert.ErrorIs(t, err, ErrMedicineNotFound)
}

func TestOptimizeManyIsolatesFailures(t *testing.T) {
	sales := &fakeSalesRepo{lines: map[int64][]domain.OrderLine{
		1: weeklyLines(1, 60, 10),
		// Medicine 2 has no sales at all.
	}}
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{
		1: activeMedicine(1),
		2: activeMedicine(2),
	}}
	forecastSvc := newTestForecastService(sales, medicines, newFakeForecastRepo())
	policies := &fakePolicyRepo{}
	svc := newTestSupplyService(medicines, policies, forecastSvc)

	failed := svc.OptimizeMany(context.Background(), []int64{1, 2}, svc.DefaultParams(), 2)
	require.Len(t, failed, 1)
	assert.Contains(t, failed, int64(2))

	stored, err := policies.LatestPolicy(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestGenerateAlertsCounts(t *testing.T) {
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{
		1: {ID: 1, Name: "a", CurrentStock: 0, ReorderPoint: 20, IsActive: true},
		2: {ID: 2, Name: "b", CurrentStock: 10, ReorderPoint: 20, IsActive: true},
		3: {ID: 3, Name: "c", CurrentStock: 500, ReorderPoint: 20, IsActive: true},
	}}
	forecastSvc := newTestForecastService(&fakeSalesRepo{}, medicines, newFakeForecastRepo())
	svc := newTestSupplyService(medicines, &fakePolicyRepo{}, forecastSvc)

	report, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Critical)
	require.Len(t, report.Alerts, 2)
	// The zero-stock medicine sorts first.
	assert.Equal(t, int64(1), report.Alerts[0].MedicineID)
	assert.True(t, report.Alerts[0].IsCritical)
}

func TestCostBreakdown(t *testing.T) {
	sales := &fakeSalesRepo{lines: map[int64][]domain.OrderLine{1: weeklyLines(1, 60, 10)}}
	medicines := &fakeMedicineRepo{medicines: map[int64]*domain.Medicine{1: activeMedicine(1)}}
	forecastSvc := newTestForecastService(sales, medicines, newFakeForecastRepo())
	policies := &fakePolicyRepo{}
	svc := newTestSupplyService(medicines, policies, forecastSvc)

	// No policy yet.
	breakdown, err := svc.CostBreakdown(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, breakdown)

	policy, err := svc.Optimize(context.Background(), 1, svc.DefaultParams())
	require.NoError(t, err)

	breakdown, err = svc.CostBreakdown(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, breakdown)
	assert.Equal(t, policy.ID, breakdown.PolicyID)
	assert.True(t, breakdown.TotalExpectedCost.Equal(policy.ExpectedHoldingCost.Add(policy.ExpectedStockoutCost)))
}
