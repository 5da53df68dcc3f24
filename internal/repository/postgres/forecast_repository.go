package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/repository"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) repository.ForecastRepository {
	return &forecastRepository{db: db}
}

// forecastRow flattens ForecastRun for sqlx; the float slices travel as JSONB.
type forecastRow struct {
	ID            int64     `db:"id"`
	MedicineID    int64     `db:"medicine_id"`
	Granularity   string    `db:"granularity"`
	Horizon       int       `db:"horizon"`
	ArimaP        int       `db:"arima_p"`
	ArimaD        int       `db:"arima_d"`
	ArimaQ        int       `db:"arima_q"`
	AIC           float64   `db:"aic"`
	BIC           float64   `db:"bic"`
	RMSE          float64   `db:"rmse"`
	MAE           float64   `db:"mae"`
	MAPE          float64   `db:"mape"`
	PointForecast []byte    `db:"point_forecast"`
	LowerBound    []byte    `db:"lower_bound"`
	UpperBound    []byte    `db:"upper_bound"`
	TrainingStart time.Time `db:"training_start"`
	TrainingEnd   time.Time `db:"training_end"`
	Observations  int       `db:"observations"`
	CreatedAt     time.Time `db:"created_at"`
}

func (row *forecastRow) toDomain() (*domain.ForecastRun, error) {
	run := &domain.ForecastRun{
		ID:          row.ID,
		MedicineID:  row.MedicineID,
		Granularity: domain.Granularity(row.Granularity),
		Horizon:     row.Horizon,
		Order:       domain.ModelOrder{P: row.ArimaP, D: row.ArimaD, Q: row.ArimaQ},
		Metrics: domain.ModelMetrics{
			AIC: row.AIC, BIC: row.BIC, RMSE: row.RMSE, MAE: row.MAE, MAPE: row.MAPE,
		},
		TrainingStart: row.TrainingStart,
		TrainingEnd:   row.TrainingEnd,
		Observations:  row.Observations,
		CreatedAt:     row.CreatedAt,
	}
	if err := json.Unmarshal(row.PointForecast, &run.PointForecast); err != nil {
		return nil, fmt.Errorf("could not decode point forecast: %w", err)
	}
	if err := json.Unmarshal(row.LowerBound, &run.Interval.Lower); err != nil {
		return nil, fmt.Errorf("could not decode lower bound: %w", err)
	}
	if err := json.Unmarshal(row.UpperBound, &run.Interval.Upper); err != nil {
		return nil, fmt.Errorf("could not decode upper bound: %w", err)
	}
	return run, nil
}

func (r *forecastRepository) SaveForecastRun(ctx context.Context, run *domain.ForecastRun) error {
	point, err := json.Marshal(run.PointForecast)
	if err != nil {
		return fmt.Errorf("could not encode point forecast: %w", err)
	}
	lower, err := json.Marshal(run.Interval.Lower)
	if err != nil {
		return fmt.Errorf("could not encode lower bound: %w", err)
	}
	upper, err := json.Marshal(run.Interval.Upper)
	if err != nil {
		return fmt.Errorf("could not encode upper bound: %w", err)
	}

	query := `
		INSERT INTO demand_forecasts (
			medicine_id, granularity, horizon,
			arima_p, arima_d, arima_q,
			aic, bic, rmse, mae, mape,
			point_forecast, lower_bound, upper_bound,
			training_start, training_end, observations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		row := tx.QueryRowxContext(ctx, query,
			run.MedicineID, string(run.Granularity), run.Horizon,
			run.Order.P, run.Order.D, run.Order.Q,
			run.Metrics.AIC, run.Metrics.BIC, run.Metrics.RMSE, run.Metrics.MAE, run.Metrics.MAPE,
			string(point), string(lower), string(upper),
			run.TrainingStart, run.TrainingEnd, run.Observations,
		)
		if err := row.Scan(&run.ID, &run.CreatedAt); err != nil {
			return fmt.Errorf("could not insert forecast run: %w", err)
		}
		return nil
	})
}

const forecastColumns = `id, medicine_id, granularity, horizon,
	arima_p, arima_d, arima_q, aic, bic, rmse, mae, mape,
	point_forecast, lower_bound, upper_bound,
	training_start, training_end, observations, created_at`

func (r *forecastRepository) GetForecastRun(ctx context.Context, id int64) (*domain.ForecastRun, error) {
	query := `SELECT ` + forecastColumns + ` FROM demand_forecasts WHERE id = $1`

	var row forecastRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get forecast run %d: %w", id, err)
	}
	return row.toDomain()
}

func (r *forecastRepository) LatestForecastRun(ctx context.Context, medicineID int64) (*domain.ForecastRun, error) {
	query := `SELECT ` + forecastColumns + `
		FROM demand_forecasts
		WHERE medicine_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var row forecastRow
	if err := r.db.GetContext(ctx, &row, query, medicineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get latest forecast for medicine %d: %w", medicineID, err)
	}
	return row.toDomain()
}
