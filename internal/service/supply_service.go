package service

import (
	"context"

	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/inventory"
	"github.com/oncare/pharmalytics/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// AlertReport is the reorder-alert payload: the ranked alerts plus the counts
// a dashboard header shows.
type AlertReport struct {
	Total    int                   `json:"total"`
	Critical int                   `json:"critical"`
	Alerts   []domain.ReorderAlert `json:"alerts"`
}

// CostBreakdown exposes the expected-cost components of the latest policy.
type CostBreakdown struct {
	MedicineID           int64           `json:"medicine_id"`
	PolicyID             int64           `json:"policy_id"`
	ExpectedHoldingCost  decimal.Decimal `json:"expected_holding_cost"`
	ExpectedStockoutCost decimal.Decimal `json:"expected_stockout_cost"`
	TotalExpectedCost    decimal.Decimal `json:"total_expected_cost"`
}

// SupplyService derives inventory policies from forecast runs and surfaces
// reorder alerts.
type SupplyService struct {
	medicines repository.MedicineRepository
	policies  repository.PolicyRepository
	forecasts *ForecastService
	defaults  inventory.Params
}

func NewSupplyService(
	medicines repository.MedicineRepository,
	policies repository.PolicyRepository,
	forecasts *ForecastService,
	cfg config.InventoryConfig,
) *SupplyService {
	return &SupplyService{
		medicines: medicines,
		policies:  policies,
		forecasts: forecasts,
		defaults: inventory.Params{
			ServiceLevel:         cfg.ServiceLevel,
			LeadTimeDays:         cfg.LeadTimeDays,
			HoldingCostPct:       cfg.HoldingCostPct,
			OrderingCost:         cfg.OrderingCost,
			StockoutCostFraction: cfg.StockoutCostFraction,
		},
	}
}

// DefaultParams exposes the configured optimization knobs so handlers can
// overlay request overrides onto them.
func (s *SupplyService) DefaultParams() inventory.Params {
	return s.defaults
}

// Optimize computes and persists a policy for one medicine, fitting a fresh
// forecast when none is stored. Parameter validation happens inside the
// optimizer so API and CLI share it.
func (s *SupplyService) Optimize(ctx context.Context, medicineID int64, params inventory.Params) (*domain.InventoryPolicy, error) {
	med, err := s.medicines.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, ErrMedicineNotFound
	}

	run, err := s.forecasts.LatestForecast(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		run, err = s.forecasts.Forecast(ctx, ForecastRequest{MedicineID: medicineID})
		if err != nil {
			return nil, err
		}
	}

	policy, err := inventory.Optimize(run, med, params)
	if err != nil {
		return nil, err
	}

	if err := s.policies.SavePolicy(ctx, policy); err != nil {
		return nil, err
	}

	log.Info().
		Int64("medicine_id", medicineID).
		Int64("forecast_id", run.ID).
		Int("reorder_point", policy.ReorderPoint).
		Int("order_quantity", policy.OrderQuantity).
		Msg("inventory policy persisted")

	return policy, nil
}

// OptimizeMany runs Optimize for each medicine with the same isolation rules
// as bulk forecasting: failures are recorded per item, never propagated.
func (s *SupplyService) OptimizeMany(ctx context.Context, medicineIDs []int64, params inventory.Params, workers int) map[int64]error {
	if workers <= 0 {
		workers = 1
	}

	errs := make([]error, len(medicineIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, id := range medicineIDs {
		i, id := i, id
		g.Go(func() error {
			if _, err := s.Optimize(ctx, id, params); err != nil {
				log.Warn().Err(err).Int64("medicine_id", id).Msg("bulk optimize: item failed")
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := make(map[int64]error)
	for i, err := range errs {
		if err != nil {
			failed[medicineIDs[i]] = err
		}
	}
	return failed
}

// GenerateAlerts ranks every active medicine at or below its reorder point.
// Alerts are computed on demand and never persisted.
func (s *SupplyService) GenerateAlerts(ctx context.Context) (*AlertReport, error) {
	meds, err := s.medicines.ListBelowReorderPoint(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(meds))
	for i, med := range meds {
		ids[i] = med.ID
	}
	policies, err := s.policies.LatestPolicies(ctx, ids)
	if err != nil {
		return nil, err
	}

	alerts := inventory.BuildAlerts(meds, policies)
	report := &AlertReport{Total: len(alerts), Alerts: alerts}
	for _, a := range alerts {
		if a.IsCritical {
			report.Critical++
		}
	}
	return report, nil
}

// CostBreakdown returns the expected-cost components of the medicine's latest
// policy, or nil when no policy has been calculated yet.
func (s *SupplyService) CostBreakdown(ctx context.Context, medicineID int64) (*CostBreakdown, error) {
	med, err := s.medicines.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, ErrMedicineNotFound
	}

	policy, err := s.policies.LatestPolicy(ctx, medicineID)
	if err != nil || policy == nil {
		return nil, err
	}

	return &CostBreakdown{
		MedicineID:           medicineID,
		PolicyID:             policy.ID,
		ExpectedHoldingCost:  policy.ExpectedHoldingCost,
		ExpectedStockoutCost: policy.ExpectedStockoutCost,
		TotalExpectedCost:    policy.TotalExpectedCost,
	}, nil
}
