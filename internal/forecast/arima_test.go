package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFitConstantSeries(t *testing.T) {
	series := constantSeries(60, 10)

	m, err := Fit(series, 0, 0, 0)
	require.NoError(t, err)

	assert.InDelta(t, 10, m.Constant, 1e-4)
	assert.Empty(t, m.Phi)
	assert.Empty(t, m.Theta)

	point, lower, upper := m.Forecast(4, 95)
	require.Len(t, point, 4)
	for k := range point {
		assert.InDelta(t, 10, point[k], 1e-3)
		assert.LessOrEqual(t, lower[k], point[k])
		assert.GreaterOrEqual(t, upper[k], point[k])
	}

	// The fit is essentially perfect, so the training metrics collapse.
	fitted, actual := m.FittedValues()
	metrics := Evaluate(actual, fitted)
	assert.Less(t, metrics.RMSE, 1e-3)
	assert.Less(t, metrics.MAPE, 1e-2)
}

func TestFitLinearTrendWithDifferencing(t *testing.T) {
	series := make([]float64, 50)
	for i := range series {
		series[i] = float64(i + 1)
	}

	m, err := Fit(series, 0, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, m.Constant, 1e-4)

	// Differencing is undone by cumulative sums, so the forecast keeps climbing.
	point, _, _ := m.Forecast(3, 95)
	require.Len(t, point, 3)
	assert.InDelta(t, 51, point[0], 1e-2)
	assert.InDelta(t, 52, point[1], 1e-2)
	assert.InDelta(t, 53, point[2], 1e-2)
}

func TestFitSeriesTooShort(t *testing.T) {
	_, err := Fit([]float64{1, 2, 3, 4, 5}, 2, 0, 2)
	require.Error(t, err)
}

func TestFitNegativeOrder(t *testing.T) {
	_, err := Fit(constantSeries(30, 5), -1, 0, 0)
	require.Error(t, err)
}

func TestForecastVarianceWidens(t *testing.T) {
	// A noisy series: confidence bands must widen with the horizon.
	series := make([]float64, 80)
	for i := range series {
		series[i] = 20 + 6*float64(i%5) - 3*float64(i%3)
	}

	m, err := Fit(series, 1, 0, 0)
	require.NoError(t, err)

	point, lower, upper := m.Forecast(6, 95)
	prevWidth := 0.0
	for k := range point {
		width := upper[k] - lower[k]
		assert.GreaterOrEqual(t, width, prevWidth-1e-9)
		prevWidth = width
	}
}

func TestExpandAR(t *testing.T) {
	// phi(B) = 1 - 0.5B with d=1 gives (1-0.5B)(1-B) = 1 - 1.5B + 0.5B^2.
	out := expandAR([]float64{0.5}, 1)
	require.Len(t, out, 2)
	assert.InDelta(t, 1.5, out[0], 1e-12)
	assert.InDelta(t, -0.5, out[1], 1e-12)

	// d=0 passes the coefficients through.
	assert.Equal(t, []float64{0.7}, expandAR([]float64{0.7}, 0))
}

func TestIntegrate(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	// Forecast increments of 1 on the differenced scale continue the line.
	out := integrate(series, []float64{1, 1, 1}, 1)
	assert.Equal(t, []float64{6, 7, 8}, out)

	// d = 0 is the identity.
	assert.Equal(t, []float64{9, 9}, integrate(series, []float64{9, 9}, 0))
}
