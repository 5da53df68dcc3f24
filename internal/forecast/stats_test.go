package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormQuantile(t *testing.T) {
	assert.InDelta(t, 0, NormQuantile(0.5), 1e-9)
	assert.InDelta(t, 1.6449, NormQuantile(0.95), 1e-3)
	assert.InDelta(t, 1.9600, NormQuantile(0.975), 1e-3)
	assert.InDelta(t, 2.3263, NormQuantile(0.99), 1e-3)

	// Symmetry around the median.
	assert.InDelta(t, -NormQuantile(0.975), NormQuantile(0.025), 1e-6)

	assert.True(t, math.IsInf(NormQuantile(0), -1))
	assert.True(t, math.IsInf(NormQuantile(1), 1))
}

func TestAutocorr(t *testing.T) {
	flat := []float64{7, 7, 7, 7, 7, 7}
	assert.Equal(t, 0.0, autocorr(flat, 1))

	// A strongly trending series has lag-1 autocorrelation near one.
	trend := make([]float64, 50)
	for i := range trend {
		trend[i] = float64(i)
	}
	assert.Greater(t, autocorr(trend, 1), 0.9)

	assert.Equal(t, 0.0, autocorr([]float64{1, 2}, 5))
	assert.Equal(t, 0.0, autocorr(trend, 0))
}

func TestDiff(t *testing.T) {
	xs := []float64{1, 2, 4, 7, 11}
	assert.Equal(t, []float64{1, 2, 3, 4}, diff(xs, 1))
	assert.Equal(t, []float64{1, 1, 1}, diff(xs, 2))
	assert.Equal(t, xs, diff(xs, 0))
	assert.Nil(t, diff([]float64{5}, 1))
}

func TestMeanStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(xs), 1e-12)
	assert.InDelta(t, 2.0, StdDev(xs), 1e-12)
	assert.InDelta(t, 40.0, Sum(xs), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
}
