package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medicine is the product record the analytics subsystem reads but never mutates.
type Medicine struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	CurrentStock int             `json:"current_stock" db:"current_stock"`
	ReorderPoint int             `json:"reorder_point" db:"reorder_point"`
	IsActive     bool            `json:"is_active" db:"is_active"`
}

// OrderLine is a single sold line item, restricted by the repository to orders
// in a fulfilled-or-in-flight status (confirmed, processing, shipped, delivered).
type OrderLine struct {
	OrderID    int64     `db:"order_id"`
	MedicineID int64     `db:"medicine_id"`
	Quantity   int       `db:"quantity"`
	CreatedAt  time.Time `db:"created_at"`
}

// SalesObservation is one period of a dense, gap-filled sales series.
type SalesObservation struct {
	PeriodStart time.Time `json:"period_start"`
	Quantity    int       `json:"quantity"`
}

// ModelOrder holds the (p, d, q) triple of a fitted ARIMA model.
type ModelOrder struct {
	P int `json:"p" db:"arima_p"`
	D int `json:"d" db:"arima_d"`
	Q int `json:"q" db:"arima_q"`
}

// ModelMetrics are the fit-quality scores of a forecast run.
type ModelMetrics struct {
	AIC  float64 `json:"aic" db:"aic"`
	BIC  float64 `json:"bic" db:"bic"`
	RMSE float64 `json:"rmse" db:"rmse"`
	MAE  float64 `json:"mae" db:"mae"`
	MAPE float64 `json:"mape" db:"mape"`
}

// Quality buckets a run by its MAPE.
func (m ModelMetrics) Quality() string {
	switch {
	case m.MAPE < 10:
		return "excellent"
	case m.MAPE < 20:
		return "good"
	case m.MAPE < 30:
		return "fair"
	default:
		return "poor"
	}
}

// ConfidenceInterval carries the two-sided bands of a forecast, one entry per
// horizon period, aligned with the point forecast.
type ConfidenceInterval struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// ForecastRun is the immutable result of one forecasting invocation. Later
// runs for the same medicine supersede it; it is never mutated in place.
type ForecastRun struct {
	ID            int64              `json:"id" db:"id"`
	MedicineID    int64              `json:"medicine_id" db:"medicine_id"`
	Granularity   Granularity        `json:"granularity" db:"granularity"`
	Horizon       int                `json:"horizon" db:"horizon"`
	Order         ModelOrder         `json:"order"`
	Metrics       ModelMetrics       `json:"metrics"`
	PointForecast []float64          `json:"point_forecast"`
	Interval      ConfidenceInterval `json:"confidence_interval"`
	TrainingStart time.Time          `json:"training_start" db:"training_start"`
	TrainingEnd   time.Time          `json:"training_end" db:"training_end"`
	Observations  int                `json:"observations" db:"observations"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

// InventoryPolicy is derived from exactly one ForecastRun and never mutated.
type InventoryPolicy struct {
	ID                   int64           `json:"id" db:"id"`
	MedicineID           int64           `json:"medicine_id" db:"medicine_id"`
	ForecastID           int64           `json:"forecast_id" db:"forecast_id"`
	ServiceLevel         float64         `json:"service_level" db:"service_level"`
	LeadTimeDays         int             `json:"lead_time_days" db:"lead_time_days"`
	HoldingCostPct       float64         `json:"holding_cost_pct" db:"holding_cost_pct"`
	ReorderPoint         int             `json:"reorder_point" db:"reorder_point"`
	OrderQuantity        int             `json:"order_quantity" db:"order_quantity"`
	MaxStock             int             `json:"max_stock" db:"max_stock"`
	SafetyStock          int             `json:"safety_stock" db:"safety_stock"`
	ExpectedHoldingCost  decimal.Decimal `json:"expected_holding_cost" db:"expected_holding_cost"`
	ExpectedStockoutCost decimal.Decimal `json:"expected_stockout_cost" db:"expected_stockout_cost"`
	TotalExpectedCost    decimal.Decimal `json:"total_expected_cost" db:"total_expected_cost"`
	CalculatedAt         time.Time       `json:"calculated_at" db:"calculated_at"`
}

// TrendDirection classifies period-over-period growth.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TrendRecord is one row per (medicine, granularity, period). Unlike forecasts
// it is recomputed in place: re-running trends for the same period upserts.
type TrendRecord struct {
	MedicineID   int64           `json:"medicine_id" db:"medicine_id"`
	Granularity  Granularity     `json:"granularity" db:"granularity"`
	PeriodDate   time.Time       `json:"period_date" db:"period_date"`
	QuantitySold int             `json:"quantity_sold" db:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue" db:"revenue"`
	AveragePrice decimal.Decimal `json:"average_price" db:"average_price"`
	GrowthRate   *float64        `json:"growth_rate" db:"growth_rate"`
	Direction    *TrendDirection `json:"trend_direction" db:"trend_direction"`
}

// AlertPriority ranks how urgently a medicine needs replenishment.
type AlertPriority string

const (
	PriorityUrgent AlertPriority = "urgent"
	PriorityHigh   AlertPriority = "high"
	PriorityMedium AlertPriority = "medium"
	PriorityLow    AlertPriority = "low"
)

// Rank orders priorities from most to least urgent, for sorting alerts.
func (p AlertPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// ReorderAlert is computed on demand and not persisted.
type ReorderAlert struct {
	MedicineID        int64         `json:"medicine_id"`
	MedicineName      string        `json:"medicine_name"`
	CurrentStock      int           `json:"current_stock"`
	ReorderPoint      int           `json:"reorder_point"`
	SuggestedQuantity int           `json:"suggested_quantity"`
	Priority          AlertPriority `json:"priority"`
	IsCritical        bool          `json:"is_critical"`
}
