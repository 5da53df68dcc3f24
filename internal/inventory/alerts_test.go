package inventory

import (
	"testing"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func med(id int64, stock, reorderPoint int, active bool) domain.Medicine {
	return domain.Medicine{
		ID:           id,
		Name:         "med",
		CurrentStock: stock,
		ReorderPoint: reorderPoint,
		IsActive:     active,
	}
}

func policyWith(reorderPoint, orderQty int) *domain.InventoryPolicy {
	return &domain.InventoryPolicy{ReorderPoint: reorderPoint, OrderQuantity: orderQty}
}

func TestPriorityForRatioBoundaries(t *testing.T) {
	// Boundaries are inclusive on the urgent side of each bucket.
	assert.Equal(t, domain.PriorityUrgent, priorityForRatio(0.0))
	assert.Equal(t, domain.PriorityUrgent, priorityForRatio(0.5))
	assert.Equal(t, domain.PriorityHigh, priorityForRatio(0.51))
	assert.Equal(t, domain.PriorityHigh, priorityForRatio(0.75))
	assert.Equal(t, domain.PriorityMedium, priorityForRatio(0.76))
	assert.Equal(t, domain.PriorityMedium, priorityForRatio(1.0))
	assert.Equal(t, domain.PriorityLow, priorityForRatio(1.01))
}

func TestBuildAlertsFiltering(t *testing.T) {
	medicines := []domain.Medicine{
		med(1, 5, 10, true),
		med(2, 50, 10, true),  // above reorder point, excluded
		med(3, 5, 10, false),  // inactive, excluded
		med(4, 10, 10, true),  // exactly at reorder point, included
	}

	alerts := BuildAlerts(medicines, nil)
	require.Len(t, alerts, 2)
	ids := []int64{alerts[0].MedicineID, alerts[1].MedicineID}
	assert.Contains(t, ids, int64(1))
	assert.Contains(t, ids, int64(4))
}

func TestBuildAlertsWithPolicy(t *testing.T) {
	medicines := []domain.Medicine{med(1, 30, 100, true)}
	policies := map[int64]*domain.InventoryPolicy{
		1: policyWith(100, 250),
	}

	alerts := BuildAlerts(medicines, policies)
	require.Len(t, alerts, 1)
	// Ratio 0.3 is urgent; the suggested quantity comes from the policy.
	assert.Equal(t, domain.PriorityUrgent, alerts[0].Priority)
	assert.Equal(t, 250, alerts[0].SuggestedQuantity)
	assert.False(t, alerts[0].IsCritical)
}

func TestBuildAlertsFallbackWithoutPolicy(t *testing.T) {
	medicines := []domain.Medicine{med(1, 7, 20, true)}

	alerts := BuildAlerts(medicines, nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.PriorityMedium, alerts[0].Priority)
	assert.Equal(t, 40, alerts[0].SuggestedQuantity)
}

func TestBuildAlertsZeroStockIsCritical(t *testing.T) {
	medicines := []domain.Medicine{med(1, 0, 20, true)}

	alerts := BuildAlerts(medicines, nil)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsCritical)
}

func TestBuildAlertsOrdering(t *testing.T) {
	medicines := []domain.Medicine{
		med(1, 90, 100, true), // ratio 0.9, medium
		med(2, 40, 100, true), // ratio 0.4, urgent
		med(3, 0, 100, true),  // critical
		med(4, 60, 100, true), // ratio 0.6, high
		med(5, 20, 100, true), // ratio 0.2, urgent, more depleted than 2
	}
	policies := map[int64]*domain.InventoryPolicy{
		1: policyWith(100, 10),
		2: policyWith(100, 10),
		3: policyWith(100, 10),
		4: policyWith(100, 10),
		5: policyWith(100, 10),
	}

	alerts := BuildAlerts(medicines, policies)
	require.Len(t, alerts, 5)

	got := make([]int64, len(alerts))
	for i, a := range alerts {
		got[i] = a.MedicineID
	}
	// Critical first, then by priority, ties broken by how depleted stock is.
	assert.Equal(t, []int64{3, 5, 2, 4, 1}, got)
}
