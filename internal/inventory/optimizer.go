package inventory

import (
	"math"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/oncare/pharmalytics/internal/forecast"
	"github.com/shopspring/decimal"
)

// Params are the knobs of the policy optimization. OrderingCost and
// StockoutCostFraction have no principled derivation in inventory practice
// here, so they are configuration with documented defaults rather than
// constants.
type Params struct {
	ServiceLevel         float64 // percent, exclusive (0, 100)
	LeadTimeDays         int
	HoldingCostPct       float64 // percent of unit price per year
	OrderingCost         float64 // fixed cost per replenishment order
	StockoutCostFraction float64 // fraction of unit price lost per unmet unit
}

// DefaultParams mirror the classical textbook assumptions.
func DefaultParams() Params {
	return Params{
		ServiceLevel:         95.0,
		LeadTimeDays:         7,
		HoldingCostPct:       20.0,
		OrderingCost:         50.0,
		StockoutCostFraction: 0.10,
	}
}

// Optimize derives an inventory policy from a forecast run using classical
// inventory theory: z-score safety stock for the target service level, a
// reorder point covering mean lead-time demand, and the economic order
// quantity for the annualized forecast. Pure: persistence happens at the
// service boundary.
func Optimize(run *domain.ForecastRun, medicine *domain.Medicine, params Params) (*domain.InventoryPolicy, error) {
	if params.ServiceLevel <= 0 || params.ServiceLevel >= 100 {
		return nil, &domain.InvalidParameterError{
			Param:  "service_level",
			Reason: "must be strictly between 0 and 100",
		}
	}
	if params.LeadTimeDays <= 0 {
		return nil, &domain.InvalidParameterError{
			Param:  "lead_time_days",
			Reason: "must be positive",
		}
	}

	unitPrice := medicine.UnitPrice.InexactFloat64()
	holdingCostPerUnit := unitPrice * params.HoldingCostPct / 100
	if holdingCostPerUnit <= 0 {
		return nil, &domain.InvalidParameterError{
			Param:  "holding_cost_pct",
			Reason: "holding cost per unit must be positive for the EOQ to be defined",
		}
	}

	demand := run.PointForecast
	periodDays := run.Granularity.PeriodDays()
	leadPeriods := float64(params.LeadTimeDays) / periodDays

	meanLeadDemand := forecast.Mean(demand) * leadPeriods
	demandStd := forecast.StdDev(demand)
	z := forecast.NormQuantile(params.ServiceLevel / 100)
	safetyStock := z * demandStd * math.Sqrt(leadPeriods)
	if safetyStock < 0 {
		safetyStock = 0
	}
	reorderPoint := int(math.Floor(meanLeadDemand + safetyStock))
	if reorderPoint < 0 {
		reorderPoint = 0
	}

	annualDemand := forecast.Sum(demand) * run.Granularity.PeriodsPerYear() / float64(len(demand))
	if annualDemand < 0 {
		annualDemand = 0
	}
	eoq := math.Sqrt(2 * annualDemand * params.OrderingCost / holdingCostPerUnit)
	orderQuantity := int(math.Floor(eoq))

	holdingCost := float64(orderQuantity) / 2 * holdingCostPerUnit
	stockoutCost := (1 - params.ServiceLevel/100) * annualDemand * unitPrice * params.StockoutCostFraction

	return &domain.InventoryPolicy{
		MedicineID:           medicine.ID,
		ForecastID:           run.ID,
		ServiceLevel:         params.ServiceLevel,
		LeadTimeDays:         params.LeadTimeDays,
		HoldingCostPct:       params.HoldingCostPct,
		ReorderPoint:         reorderPoint,
		OrderQuantity:        orderQuantity,
		MaxStock:             reorderPoint + orderQuantity,
		SafetyStock:          int(safetyStock),
		ExpectedHoldingCost:  money(holdingCost),
		ExpectedStockoutCost: money(stockoutCost),
		TotalExpectedCost:    money(holdingCost + stockoutCost),
		CalculatedAt:         time.Now().UTC(),
	}, nil
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
