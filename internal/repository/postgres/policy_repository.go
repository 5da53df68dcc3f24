package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/repository"
)

type policyRepository struct {
	db *DB
}

func NewPolicyRepository(db *DB) repository.PolicyRepository {
	return &policyRepository{db: db}
}

const policyColumns = `id, medicine_id, forecast_id, service_level, lead_time_days,
	holding_cost_pct, reorder_point, order_quantity, max_stock, safety_stock,
	expected_holding_cost, expected_stockout_cost, total_expected_cost, calculated_at`

func (r *policyRepository) SavePolicy(ctx context.Context, policy *domain.InventoryPolicy) error {
	query := `
		INSERT INTO inventory_policies (
			medicine_id, forecast_id, service_level, lead_time_days,
			holding_cost_pct, reorder_point, order_quantity, max_stock, safety_stock,
			expected_holding_cost, expected_stockout_cost, total_expected_cost
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, calculated_at`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		row := tx.QueryRowxContext(ctx, query,
			policy.MedicineID, policy.ForecastID, policy.ServiceLevel, policy.LeadTimeDays,
			policy.HoldingCostPct, policy.ReorderPoint, policy.OrderQuantity, policy.MaxStock, policy.SafetyStock,
			policy.ExpectedHoldingCost, policy.ExpectedStockoutCost, policy.TotalExpectedCost,
		)
		if err := row.Scan(&policy.ID, &policy.CalculatedAt); err != nil {
			return fmt.Errorf("could not insert inventory policy: %w", err)
		}
		return nil
	})
}

func (r *policyRepository) LatestPolicy(ctx context.Context, medicineID int64) (*domain.InventoryPolicy, error) {
	query := `SELECT ` + policyColumns + `
		FROM inventory_policies
		WHERE medicine_id = $1
		ORDER BY calculated_at DESC, id DESC
		LIMIT 1`

	var policy domain.InventoryPolicy
	if err := r.db.GetContext(ctx, &policy, query, medicineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get latest policy for medicine %d: %w", medicineID, err)
	}
	return &policy, nil
}

func (r *policyRepository) LatestPolicies(ctx context.Context, medicineIDs []int64) (map[int64]*domain.InventoryPolicy, error) {
	result := make(map[int64]*domain.InventoryPolicy, len(medicineIDs))
	if len(medicineIDs) == 0 {
		return result, nil
	}

	query := `SELECT DISTINCT ON (medicine_id) ` + policyColumns + `
		FROM inventory_policies
		WHERE medicine_id = ANY($1)
		ORDER BY medicine_id, calculated_at DESC, id DESC`

	var policies []domain.InventoryPolicy
	if err := r.db.SelectContext(ctx, &policies, query, pq.Array(medicineIDs)); err != nil {
		return nil, fmt.Errorf("could not get latest policies: %w", err)
	}
	for i := range policies {
		result[policies[i].MedicineID] = &policies[i]
	}
	return result, nil
}
