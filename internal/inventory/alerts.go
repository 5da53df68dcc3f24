package inventory

import (
	"sort"

	"github.com/oncare/pharmalytics/internal/domain"
)

// BuildAlerts ranks replenishment urgency for medicines whose current stock
// sits at or below their reorder point. Candidates with a stored policy use
// its order quantity and reorder point; the rest fall back to twice the
// configured reorder point with a medium priority. Output is most urgent
// first: criticals (zero stock) lead, then priority, then stock ratio.
func BuildAlerts(medicines []domain.Medicine, policies map[int64]*domain.InventoryPolicy) []domain.ReorderAlert {
	alerts := make([]domain.ReorderAlert, 0, len(medicines))
	ratios := make(map[int64]float64, len(medicines))

	for _, med := range medicines {
		if !med.IsActive || med.CurrentStock > med.ReorderPoint {
			continue
		}

		alert := domain.ReorderAlert{
			MedicineID:   med.ID,
			MedicineName: med.Name,
			CurrentStock: med.CurrentStock,
			ReorderPoint: med.ReorderPoint,
			IsCritical:   med.CurrentStock == 0,
		}

		ratio := 1.0
		if policy, ok := policies[med.ID]; ok && policy != nil {
			alert.SuggestedQuantity = policy.OrderQuantity
			if policy.ReorderPoint > 0 {
				ratio = float64(med.CurrentStock) / float64(policy.ReorderPoint)
				alert.Priority = priorityForRatio(ratio)
			} else {
				alert.Priority = domain.PriorityMedium
			}
		} else {
			alert.SuggestedQuantity = med.ReorderPoint * 2
			alert.Priority = domain.PriorityMedium
		}
		if alert.IsCritical {
			ratio = 0
		}

		ratios[med.ID] = ratio
		alerts = append(alerts, alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.IsCritical != b.IsCritical {
			return a.IsCritical
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		return ratios[a.MedicineID] < ratios[b.MedicineID]
	})
	return alerts
}

// priorityForRatio buckets current stock relative to the optimal reorder
// point. Boundaries are inclusive: exactly 0.5 is still urgent.
func priorityForRatio(ratio float64) domain.AlertPriority {
	switch {
	case ratio <= 0.5:
		return domain.PriorityUrgent
	case ratio <= 0.75:
		return domain.PriorityHigh
	case ratio <= 1.0:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
