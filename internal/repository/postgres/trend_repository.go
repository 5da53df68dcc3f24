package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/repository"
)

type trendRepository struct {
	db *DB
}

func NewTrendRepository(db *DB) repository.TrendRepository {
	return &trendRepository{db: db}
}

func (r *trendRepository) UpsertTrend(ctx context.Context, rec *domain.TrendRecord) error {
	query := `
		INSERT INTO sales_trends (
			medicine_id, granularity, period_date,
			quantity_sold, revenue, average_price, growth_rate, trend_direction
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (medicine_id, granularity, period_date) DO UPDATE SET
			quantity_sold = EXCLUDED.quantity_sold,
			revenue = EXCLUDED.revenue,
			average_price = EXCLUDED.average_price,
			growth_rate = EXCLUDED.growth_rate,
			trend_direction = EXCLUDED.trend_direction`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			rec.MedicineID, string(rec.Granularity), rec.PeriodDate,
			rec.QuantitySold, rec.Revenue, rec.AveragePrice, rec.GrowthRate, rec.Direction,
		)
		if err != nil {
			return fmt.Errorf("could not upsert trend row: %w", err)
		}
		return nil
	})
}

func (r *trendRepository) ListTrends(ctx context.Context, medicineID int64, granularity domain.Granularity, since time.Time) ([]domain.TrendRecord, error) {
	query := `
		SELECT medicine_id, granularity, period_date,
			quantity_sold, revenue, average_price, growth_rate, trend_direction
		FROM sales_trends
		WHERE medicine_id = $1 AND granularity = $2 AND period_date >= $3
		ORDER BY period_date ASC`

	var trends []domain.TrendRecord
	if err := r.db.SelectContext(ctx, &trends, query, medicineID, string(granularity), since); err != nil {
		return nil, fmt.Errorf("could not list trends: %w", err)
	}
	return trends, nil
}
