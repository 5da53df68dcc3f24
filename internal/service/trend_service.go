package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/forecast"
	"github.com/oncare/pharmalytics/internal/repository"
	"github.com/rs/zerolog/log"
)

// TrendService recomputes per-period sales trends. Unlike forecasts, trend
// rows are upserted in place, so concurrent recomputes for the same
// (medicine, granularity) pair are serialized to keep growth rates consistent
// with their preceding period.
type TrendService struct {
	sales     repository.SalesRepository
	medicines repository.MedicineRepository
	trends    repository.TrendRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTrendService(
	sales repository.SalesRepository,
	medicines repository.MedicineRepository,
	trends repository.TrendRepository,
) *TrendService {
	return &TrendService{
		sales:     sales,
		medicines: medicines,
		trends:    trends,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *TrendService) lockFor(medicineID int64, granularity domain.Granularity) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", medicineID, granularity)
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// Recompute rebuilds the trend rows for one medicine and granularity over the
// given window and upserts them in ascending period order.
func (s *TrendService) Recompute(ctx context.Context, medicineID int64, granularity domain.Granularity, start, end time.Time) ([]domain.TrendRecord, error) {
	med, err := s.medicines.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, ErrMedicineNotFound
	}

	l := s.lockFor(medicineID, granularity)
	l.Lock()
	defer l.Unlock()

	lines, err := s.sales.FetchOrderLines(ctx, medicineID, start, end)
	if err != nil {
		return nil, err
	}
	series, err := forecast.BuildSeries(lines, medicineID, granularity)
	if err != nil {
		return nil, err
	}

	records := forecast.ComputeTrends(series, medicineID, granularity, med.UnitPrice)
	for i := range records {
		if err := s.trends.UpsertTrend(ctx, &records[i]); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int64("medicine_id", medicineID).
		Str("granularity", string(granularity)).
		Int("periods", len(records)).
		Msg("sales trends recomputed")

	return records, nil
}

// List returns stored trend rows for a medicine since the given time.
func (s *TrendService) List(ctx context.Context, medicineID int64, granularity domain.Granularity, since time.Time) ([]domain.TrendRecord, error) {
	return s.trends.ListTrends(ctx, medicineID, granularity, since)
}
