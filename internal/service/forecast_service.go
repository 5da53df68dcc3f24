package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/oncare/pharmalytics/internal/cache"
	"github.com/oncare/pharmalytics/internal/config"
	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/forecast"
	"github.com/oncare/pharmalytics/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrMedicineNotFound is returned when the requested medicine does not exist.
var ErrMedicineNotFound = errors.New("medicine not found")

// defaultTrainingDays bounds how far back the sales query reaches. A year of
// history is enough for the supported orders and keeps the fit fast.
const defaultTrainingDays = 365

type ForecastRequest struct {
	MedicineID  int64
	Granularity domain.Granularity // empty means the configured default
	Horizon     int                // <= 0 means the configured default
}

// BulkResult reports one medicine's outcome inside a bulk run. Failures are
// carried as strings so one bad series never aborts the batch.
type BulkResult struct {
	MedicineID int64               `json:"medicine_id"`
	Run        *domain.ForecastRun `json:"forecast,omitempty"`
	Error      string              `json:"error,omitempty"`
}

type BulkOutcome struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}

// ChartPayload is the history-plus-forecast series a dashboard plots.
type ChartPayload struct {
	MedicineID int64                     `json:"medicine_id"`
	History    []domain.SalesObservation `json:"history"`
	Run        *domain.ForecastRun       `json:"forecast"`
	Quality    string                    `json:"model_quality"`
}

type ForecastService struct {
	sales     repository.SalesRepository
	medicines repository.MedicineRepository
	forecasts repository.ForecastRepository
	cache     cache.ForecastCache
	cfg       config.ForecastConfig
}

func NewForecastService(
	sales repository.SalesRepository,
	medicines repository.MedicineRepository,
	forecasts repository.ForecastRepository,
	cacheImpl cache.ForecastCache,
	cfg config.ForecastConfig,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		sales:     sales,
		medicines: medicines,
		forecasts: forecasts,
		cache:     cacheImpl,
		cfg:       cfg,
	}
}

// Forecast fits a demand model for one medicine and persists the run. The
// pipeline is: fetch sales, build a dense series, pick an order by stepwise
// AIC search, fit, score against the training data, project the horizon.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) (*domain.ForecastRun, error) {
	granularity := req.Granularity
	if granularity == "" {
		var err error
		granularity, err = domain.ParseGranularity(s.cfg.DefaultGranularity)
		if err != nil {
			return nil, err
		}
	}
	horizon := req.Horizon
	if horizon <= 0 {
		horizon = s.cfg.DefaultHorizon
	}

	med, err := s.medicines.GetMedicine(ctx, req.MedicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, ErrMedicineNotFound
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -defaultTrainingDays)
	lines, err := s.sales.FetchOrderLines(ctx, req.MedicineID, start, end)
	if err != nil {
		return nil, err
	}

	series, err := forecast.BuildSeries(lines, req.MedicineID, granularity)
	if err != nil {
		return nil, err
	}
	if len(series) < s.cfg.MinDataPoints {
		return nil, &domain.InsufficientDataError{
			Actual:   len(series),
			Required: s.cfg.MinDataPoints,
		}
	}

	quantities := forecast.Quantities(series)
	order := forecast.SelectOrder(quantities)
	model, err := forecast.Fit(quantities, order.P, order.D, order.Q)
	if err != nil {
		return nil, &domain.ForecastError{MedicineID: req.MedicineID, Err: err}
	}

	fitted, actual := model.FittedValues()
	metrics := forecast.Evaluate(actual, fitted)
	metrics.AIC = model.AIC
	metrics.BIC = model.BIC
	metrics = forecast.SanitizeMetrics(metrics)

	point, lower, upper := model.Forecast(horizon, s.cfg.ConfidenceLevel)
	point = clampNonNegative(forecast.Sanitize(point))
	lower = clampNonNegative(forecast.Sanitize(lower))
	upper = forecast.Sanitize(upper)

	run := &domain.ForecastRun{
		MedicineID:    req.MedicineID,
		Granularity:   granularity,
		Horizon:       horizon,
		Order:         order,
		Metrics:       metrics,
		PointForecast: point,
		Interval:      domain.ConfidenceInterval{Lower: lower, Upper: upper},
		TrainingStart: series[0].PeriodStart,
		TrainingEnd:   series[len(series)-1].PeriodStart,
		Observations:  len(series),
	}

	if err := s.forecasts.SaveForecastRun(ctx, run); err != nil {
		return nil, err
	}

	if err := s.cache.SetRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set run failed")
	}
	if err := s.cache.SetLatest(ctx, run); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set latest failed")
	}

	log.Info().
		Int64("medicine_id", req.MedicineID).
		Str("granularity", string(granularity)).
		Int("p", order.P).Int("d", order.D).Int("q", order.Q).
		Float64("mape", metrics.MAPE).
		Msg("forecast run persisted")

	return run, nil
}

// GetForecast returns a stored run by id, or nil when it does not exist.
func (s *ForecastService) GetForecast(ctx context.Context, id int64) (*domain.ForecastRun, error) {
	if run, ok, err := s.cache.GetRun(ctx, id); err == nil && ok {
		return run, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get run failed")
	}

	run, err := s.forecasts.GetForecastRun(ctx, id)
	if err != nil || run == nil {
		return run, err
	}

	if err := s.cache.SetRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set run failed")
	}
	return run, nil
}

// LatestForecast returns the most recent run for a medicine, or nil.
func (s *ForecastService) LatestForecast(ctx context.Context, medicineID int64) (*domain.ForecastRun, error) {
	if run, ok, err := s.cache.GetLatest(ctx, medicineID); err == nil && ok {
		return run, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get latest failed")
	}

	run, err := s.forecasts.LatestForecastRun(ctx, medicineID)
	if err != nil || run == nil {
		return run, err
	}

	if err := s.cache.SetLatest(ctx, run); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set latest failed")
	}
	return run, nil
}

// BulkForecast runs Forecast for each medicine with a bounded worker pool.
// Every medicine gets a result slot; failures are recorded, never propagated,
// so a medicine with three sales cannot sink the batch.
func (s *ForecastService) BulkForecast(ctx context.Context, medicineIDs []int64, granularity domain.Granularity, horizon int) *BulkOutcome {
	results := make([]BulkResult, len(medicineIDs))

	g, ctx := errgroup.WithContext(ctx)
	workers := s.cfg.BulkWorkers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, id := range medicineIDs {
		i, id := i, id
		g.Go(func() error {
			run, err := s.Forecast(ctx, ForecastRequest{
				MedicineID:  id,
				Granularity: granularity,
				Horizon:     horizon,
			})
			if err != nil {
				log.Warn().Err(err).Int64("medicine_id", id).Msg("bulk forecast: item failed")
				results[i] = BulkResult{MedicineID: id, Error: err.Error()}
				return nil
			}
			results[i] = BulkResult{MedicineID: id, Run: run}
			return nil
		})
	}
	_ = g.Wait()

	outcome := &BulkOutcome{Results: results}
	for _, r := range results {
		if r.Error == "" {
			outcome.Succeeded++
		} else {
			outcome.Failed++
		}
	}
	return outcome
}

// ChartData assembles the historical series plus the latest forecast for
// plotting. A fresh forecast is fitted when none is stored yet.
func (s *ForecastService) ChartData(ctx context.Context, medicineID int64, granularity domain.Granularity) (*ChartPayload, error) {
	if granularity == "" {
		var err error
		granularity, err = domain.ParseGranularity(s.cfg.DefaultGranularity)
		if err != nil {
			return nil, err
		}
	}

	med, err := s.medicines.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, ErrMedicineNotFound
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -defaultTrainingDays)
	lines, err := s.sales.FetchOrderLines(ctx, medicineID, start, end)
	if err != nil {
		return nil, err
	}
	series, err := forecast.BuildSeries(lines, medicineID, granularity)
	if err != nil {
		return nil, err
	}

	run, err := s.LatestForecast(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if run == nil || run.Granularity != granularity {
		run, err = s.Forecast(ctx, ForecastRequest{MedicineID: medicineID, Granularity: granularity})
		if err != nil {
			return nil, err
		}
	}

	return &ChartPayload{
		MedicineID: medicineID,
		History:    series,
		Run:        run,
		Quality:    run.Metrics.Quality(),
	}, nil
}

func clampNonNegative(xs []float64) []float64 {
	for i, v := range xs {
		xs[i] = math.Max(v, 0)
	}
	return xs
}
