package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelMetricsQuality(t *testing.T) {
	assert.Equal(t, "excellent", ModelMetrics{MAPE: 9.99}.Quality())
	assert.Equal(t, "good", ModelMetrics{MAPE: 10}.Quality())
	assert.Equal(t, "good", ModelMetrics{MAPE: 19.99}.Quality())
	assert.Equal(t, "fair", ModelMetrics{MAPE: 20}.Quality())
	assert.Equal(t, "poor", ModelMetrics{MAPE: 30}.Quality())
}

func TestAlertPriorityRank(t *testing.T) {
	assert.Less(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
}
