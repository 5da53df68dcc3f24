package service

import (
	"context"
	"sync"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
)

type fakeSalesRepo struct {
	lines map[int64][]domain.OrderLine
}

func (f *fakeSalesRepo) FetchOrderLines(ctx context.Context, medicineID int64, start, end time.Time) ([]domain.OrderLine, error) {
	return f.lines[medicineID], nil
}

type fakeMedicineRepo struct {
	medicines map[int64]*domain.Medicine
}

func (f *fakeMedicineRepo) GetMedicine(ctx context.Context, id int64) (*domain.Medicine, error) {
	return f.medicines[id], nil
}

func (f *fakeMedicineRepo) ListActiveMedicines(ctx context.Context) ([]domain.Medicine, error) {
	var out []domain.Medicine
	for _, m := range f.medicines {
		if m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMedicineRepo) ListBelowReorderPoint(ctx context.Context) ([]domain.Medicine, error) {
	var out []domain.Medicine
	for _, m := range f.medicines {
		if m.IsActive && m.CurrentStock <= m.ReorderPoint {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeForecastRepo struct {
	mu     sync.Mutex
	nextID int64
	runs   map[int64]*domain.ForecastRun
}

func newFakeForecastRepo() *fakeForecastRepo {
	return &fakeForecastRepo{runs: make(map[int64]*domain.ForecastRun)}
}

func (f *fakeForecastRepo) SaveForecastRun(ctx context.Context, run *domain.ForecastRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	run.ID = f.nextID
	run.CreatedAt = time.Now().UTC()
	stored := *run
	f.runs[run.ID] = &stored
	return nil
}

func (f *fakeForecastRepo) GetForecastRun(ctx context.Context, id int64) (*domain.ForecastRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[id], nil
}

func (f *fakeForecastRepo) LatestForecastRun(ctx context.Context, medicineID int64) (*domain.ForecastRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.ForecastRun
	for _, run := range f.runs {
		if run.MedicineID != medicineID {
			continue
		}
		if latest == nil || run.ID > latest.ID {
			latest = run
		}
	}
	return latest, nil
}

type fakePolicyRepo struct {
	mu       sync.Mutex
	nextID   int64
	policies []*domain.InventoryPolicy
}

func (f *fakePolicyRepo) SavePolicy(ctx context.Context, policy *domain.InventoryPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	policy.ID = f.nextID
	stored := *policy
	f.policies = append(f.policies, &stored)
	return nil
}

func (f *fakePolicyRepo) LatestPolicy(ctx context.Context, medicineID int64) (*domain.InventoryPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.InventoryPolicy
	for _, p := range f.policies {
		if p.MedicineID == medicineID && (latest == nil || p.ID > latest.ID) {
			latest = p
		}
	}
	return latest, nil
}

func (f *fakePolicyRepo) LatestPolicies(ctx context.Context, medicineIDs []int64) (map[int64]*domain.InventoryPolicy, error) {
	out := make(map[int64]*domain.InventoryPolicy)
	for _, id := range medicineIDs {
		if p, _ := f.LatestPolicy(ctx, id); p != nil {
			out[id] = p
		}
	}
	return out, nil
}

type fakeTrendRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.TrendRecord
}

func newFakeTrendRepo() *fakeTrendRepo {
	return &fakeTrendRepo{rows: make(map[string]*domain.TrendRecord)}
}

func trendKey(rec *domain.TrendRecord) string {
	return rec.PeriodDate.Format("2006-01-02") + string(rec.Granularity)
}

func (f *fakeTrendRepo) UpsertTrend(ctx context.Context, rec *domain.TrendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *rec
	f.rows[trendKey(rec)] = &stored
	return nil
}

func (f *fakeTrendRepo) ListTrends(ctx context.Context, medicineID int64, granularity domain.Granularity, since time.Time) ([]domain.TrendRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TrendRecord
	for _, rec := range f.rows {
		if rec.MedicineID == medicineID && rec.Granularity == granularity && !rec.PeriodDate.Before(since) {
			out = append(out, *rec)
		}
	}
	return out, nil
}
