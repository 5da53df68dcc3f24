package forecast

import (
	"math"

	"github.com/oncare/pharmalytics/internal/domain"
)

// sentinel replaces NaN or infinite values before persistence: downstream
// JSON consumers cannot represent non-finite floats.
const sentinel = 1e9

// Evaluate computes RMSE, MAE and MAPE between aligned actual and predicted
// values. Non-finite pairs are dropped first. For MAPE, a zero actual value
// substitutes 1 as the denominator for that term only, so a single
// zero-demand period cannot blow the average up to infinity.
func Evaluate(actual, predicted []float64) domain.ModelMetrics {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}

	var sse, sae, sape float64
	var count int
	for i := 0; i < n; i++ {
		a, p := actual[i], predicted[i]
		if !isFinite(a) || !isFinite(p) {
			continue
		}
		d := a - p
		sse += d * d
		sae += math.Abs(d)
		den := a
		if den == 0 {
			den = 1
		}
		sape += math.Abs(d/den) * 100
		count++
	}

	if count == 0 {
		return domain.ModelMetrics{RMSE: sentinel, MAE: sentinel, MAPE: sentinel}
	}
	c := float64(count)
	return domain.ModelMetrics{
		RMSE: math.Sqrt(sse / c),
		MAE:  sae / c,
		MAPE: sape / c,
	}
}

// Sanitize clamps non-finite values in place so a run can always be persisted
// and serialized.
func Sanitize(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v float64) float64 {
	if math.IsNaN(v) {
		return sentinel
	}
	if math.IsInf(v, 1) {
		return sentinel
	}
	if math.IsInf(v, -1) {
		return -sentinel
	}
	return v
}

// SanitizeMetrics applies the same clamping to a metrics block.
func SanitizeMetrics(m domain.ModelMetrics) domain.ModelMetrics {
	m.AIC = sanitizeValue(m.AIC)
	m.BIC = sanitizeValue(m.BIC)
	m.RMSE = sanitizeValue(m.RMSE)
	m.MAE = sanitizeValue(m.MAE)
	m.MAPE = sanitizeValue(m.MAPE)
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
