package repository

import (
	"context"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
)

// SalesRepository reads raw order lines. The analytics core never writes to
// the order tables.
type SalesRepository interface {
	// FetchOrderLines returns line items for the medicine whose parent order
	// was created inside [start, end] and sits in a fulfilled-or-in-flight
	// status, ordered by creation time ascending.
	FetchOrderLines(ctx context.Context, medicineID int64, start, end time.Time) ([]domain.OrderLine, error)
}

// MedicineRepository reads the product catalog.
type MedicineRepository interface {
	GetMedicine(ctx context.Context, id int64) (*domain.Medicine, error)
	ListActiveMedicines(ctx context.Context) ([]domain.Medicine, error)
	// ListBelowReorderPoint returns active medicines with current_stock at or
	// below their configured reorder point.
	ListBelowReorderPoint(ctx context.Context) ([]domain.Medicine, error)
}

// ForecastRepository persists immutable forecast runs.
type ForecastRepository interface {
	SaveForecastRun(ctx context.Context, run *domain.ForecastRun) error
	GetForecastRun(ctx context.Context, id int64) (*domain.ForecastRun, error)
	// LatestForecastRun returns the most recent run for the medicine, or nil
	// when none exists.
	LatestForecastRun(ctx context.Context, medicineID int64) (*domain.ForecastRun, error)
}

// PolicyRepository persists immutable inventory policies.
type PolicyRepository interface {
	SavePolicy(ctx context.Context, policy *domain.InventoryPolicy) error
	// LatestPolicy returns the most recent policy for the medicine, or nil.
	LatestPolicy(ctx context.Context, medicineID int64) (*domain.InventoryPolicy, error)
	// LatestPolicies returns the newest policy per medicine for the given ids.
	LatestPolicies(ctx context.Context, medicineIDs []int64) (map[int64]*domain.InventoryPolicy, error)
}

// TrendRepository upserts trend rows keyed by (medicine, granularity, period).
type TrendRepository interface {
	UpsertTrend(ctx context.Context, rec *domain.TrendRecord) error
	ListTrends(ctx context.Context, medicineID int64, granularity domain.Granularity, since time.Time) ([]domain.TrendRecord, error)
}
