package forecast

import "math"

func Sum(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the population variance, matching how demand spread is used in
// the safety stock formula.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

func StdDev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

// autocorr computes the lag-k sample autocorrelation. Returns 0 for series
// with no variance, which the differencing heuristic treats as stationary.
func autocorr(xs []float64, lag int) float64 {
	n := len(xs)
	if lag <= 0 || n <= lag {
		return 0
	}
	m := Mean(xs)
	var den float64
	for _, x := range xs {
		d := x - m
		den += d * d
	}
	if den == 0 {
		return 0
	}
	var num float64
	for t := lag; t < n; t++ {
		num += (xs[t] - m) * (xs[t-lag] - m)
	}
	return num / den
}

// diff applies first differencing d times.
func diff(xs []float64, d int) []float64 {
	out := append([]float64(nil), xs...)
	for i := 0; i < d; i++ {
		if len(out) < 2 {
			return nil
		}
		next := make([]float64, len(out)-1)
		for t := 1; t < len(out); t++ {
			next[t-1] = out[t] - out[t-1]
		}
		out = next
	}
	return out
}

// NormQuantile is the inverse standard normal CDF (Acklam's rational
// approximation, relative error below 1.15e-9 on (0, 1)).
func NormQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	a := [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	c := [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const pLow = 0.02425
	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-pLow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}
