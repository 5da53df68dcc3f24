package forecast

import (
	"fmt"
	"math"

	"github.com/oncare/pharmalytics/internal/domain"
)

const minSigma2 = 1e-12

// Model is a fitted ARIMA(p,d,q) model estimated by conditional sum of
// squares. The recursion treats pre-sample shocks as zero, which is the usual
// CSS convention and keeps estimation dependency-free.
type Model struct {
	Order    domain.ModelOrder
	Phi      []float64
	Theta    []float64
	Constant float64
	Sigma2   float64
	AIC      float64
	BIC      float64

	series []float64
	diffed []float64
	resid  []float64 // residuals on the differenced scale, index aligned from t = p
}

// Fit estimates an ARIMA(p,d,q) model on the series. It returns an error when
// the series is too short for the requested order or the optimizer lands on a
// non-finite objective.
func Fit(series []float64, p, d, q int) (*Model, error) {
	if p < 0 || d < 0 || q < 0 {
		return nil, fmt.Errorf("negative arima order (%d,%d,%d)", p, d, q)
	}
	w := diff(series, d)
	if len(w) <= p+q+2 {
		return nil, fmt.Errorf("series too short for arima(%d,%d,%d): %d usable points", p, d, q, len(w))
	}

	init := initialParams(w, p, q)
	best := init
	obj := func(params []float64) float64 {
		return cssObjective(w, p, q, params)
	}
	if len(init) > 0 {
		best = nelderMead(obj, init)
	}
	if !finiteAll(best) || math.IsInf(obj(best), 0) {
		return nil, fmt.Errorf("arima(%d,%d,%d) estimation did not converge", p, d, q)
	}

	m := &Model{
		Order:    domain.ModelOrder{P: p, D: d, Q: q},
		Constant: best[0],
		Phi:      append([]float64(nil), best[1:1+p]...),
		Theta:    append([]float64(nil), best[1+p:1+p+q]...),
		series:   append([]float64(nil), series...),
		diffed:   w,
	}

	m.resid = residuals(w, p, m.Constant, m.Phi, m.Theta)
	n := float64(len(m.resid))
	var sse float64
	for _, e := range m.resid {
		sse += e * e
	}
	m.Sigma2 = math.Max(sse/n, minSigma2)

	// Gaussian log-likelihood at the CSS optimum; k counts the constant and
	// the innovation variance alongside the ARMA coefficients.
	logLik := -0.5 * n * (math.Log(2*math.Pi*m.Sigma2) + 1)
	k := float64(p + q + 2)
	m.AIC = 2*k - 2*logLik
	m.BIC = k*math.Log(n) - 2*logLik

	return m, nil
}

// FittedValues returns the one-step in-sample predictions on the original
// scale, aligned to the tail of the input series. Because differencing is
// linear, the one-step residual on the differenced scale equals the one-step
// error on the original scale.
func (m *Model) FittedValues() (fitted, actual []float64) {
	offset := m.Order.D + m.Order.P
	fitted = make([]float64, len(m.resid))
	actual = make([]float64, len(m.resid))
	for i, e := range m.resid {
		actual[i] = m.series[offset+i]
		fitted[i] = m.series[offset+i] - e
	}
	return fitted, actual
}

// Forecast produces h point forecasts with symmetric confidence bands at the
// given level (e.g. 95 for 95%).
func (m *Model) Forecast(h int, level float64) (point, lower, upper []float64) {
	if h <= 0 {
		return nil, nil, nil
	}

	// Forward the ARMA recursion on the differenced scale with future shocks
	// set to their zero mean.
	w := append([]float64(nil), m.diffed...)
	e := make([]float64, len(m.diffed))
	copy(e[m.Order.P:], m.resid)

	wf := make([]float64, 0, h)
	for k := 0; k < h; k++ {
		t := len(w)
		v := m.Constant
		for i, phi := range m.Phi {
			idx := t - 1 - i
			if idx >= 0 {
				v += phi * w[idx]
			}
		}
		for j, theta := range m.Theta {
			idx := t - 1 - j
			if idx >= 0 && idx < len(e) {
				v += theta * e[idx]
			}
		}
		w = append(w, v)
		e = append(e, 0)
		wf = append(wf, v)
	}

	point = integrate(m.series, wf, m.Order.D)

	psi := m.psiWeights(h)
	z := NormQuantile(0.5 + level/200)
	lower = make([]float64, h)
	upper = make([]float64, h)
	var psiSum float64
	for k := 0; k < h; k++ {
		psiSum += psi[k] * psi[k]
		se := math.Sqrt(m.Sigma2 * psiSum)
		lower[k] = point[k] - z*se
		upper[k] = point[k] + z*se
	}
	return point, lower, upper
}

// psiWeights computes the MA(inf) weights of the integrated model by folding
// the differencing operator into the AR polynomial.
func (m *Model) psiWeights(h int) []float64 {
	ar := expandAR(m.Phi, m.Order.D)
	psi := make([]float64, h)
	for j := 0; j < h; j++ {
		if j == 0 {
			psi[0] = 1
			continue
		}
		var v float64
		if j <= len(m.Theta) {
			v = m.Theta[j-1]
		}
		for i := 1; i <= len(ar) && i <= j; i++ {
			v += ar[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// expandAR multiplies phi(B) by (1-B)^d and returns the implied AR
// coefficients of order p+d.
func expandAR(phi []float64, d int) []float64 {
	// poly holds the coefficients of phi(B)*(1-B)^d as 1 - a1*B - a2*B^2 - ...
	poly := make([]float64, len(phi)+1)
	poly[0] = 1
	for i, c := range phi {
		poly[i+1] = -c
	}
	for i := 0; i < d; i++ {
		next := make([]float64, len(poly)+1)
		for j, c := range poly {
			next[j] += c
			next[j+1] -= c
		}
		poly = next
	}
	out := make([]float64, len(poly)-1)
	for i := 1; i < len(poly); i++ {
		out[i-1] = -poly[i]
	}
	return out
}

// integrate undoes d rounds of differencing for a block of forecasts.
func integrate(series, wf []float64, d int) []float64 {
	if d == 0 {
		return append([]float64(nil), wf...)
	}
	// Rebuild each differencing level's tail value, innermost first.
	levels := make([][]float64, d+1)
	levels[0] = series
	for i := 1; i <= d; i++ {
		levels[i] = diff(series, i)
	}

	cur := append([]float64(nil), wf...)
	for lvl := d - 1; lvl >= 0; lvl-- {
		prev := levels[lvl][len(levels[lvl])-1]
		for k := range cur {
			prev += cur[k]
			cur[k] = prev
		}
	}
	return cur
}

// residuals runs the CSS recursion: e_t = w_t - c - sum(phi_i w_{t-i}) -
// sum(theta_j e_{t-j}), starting at t = p with pre-sample shocks at zero.
func residuals(w []float64, p int, c float64, phi, theta []float64) []float64 {
	e := make([]float64, len(w))
	out := make([]float64, 0, len(w)-p)
	for t := p; t < len(w); t++ {
		v := w[t] - c
		for i, ph := range phi {
			v -= ph * w[t-1-i]
		}
		for j, th := range theta {
			idx := t - 1 - j
			if idx >= p {
				v -= th * e[idx]
			}
		}
		e[t] = v
		out = append(out, v)
	}
	return out
}

// cssObjective is the conditional sum of squares with a stationarity guard:
// parameter vectors whose coefficients leave the unit box are pushed away with
// a steep penalty instead of being evaluated.
func cssObjective(w []float64, p, q int, params []float64) float64 {
	c := params[0]
	phi := params[1 : 1+p]
	theta := params[1+p : 1+p+q]

	var excess float64
	for _, v := range append(append([]float64(nil), phi...), theta...) {
		if a := math.Abs(v); a > 0.998 {
			excess += a - 0.998
		}
	}
	if excess > 0 {
		return 1e12 * (1 + excess)
	}

	var sse float64
	for _, e := range residuals(w, p, c, phi, theta) {
		sse += e * e
	}
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return math.Inf(1)
	}
	return sse
}

// initialParams seeds the optimizer: constant at the differenced mean, AR
// coefficients from Yule-Walker via Levinson-Durbin, MA coefficients at zero.
func initialParams(w []float64, p, q int) []float64 {
	params := make([]float64, 1+p+q)
	params[0] = Mean(w)
	if p > 0 {
		copy(params[1:1+p], levinsonDurbin(w, p))
	}
	return params
}

// levinsonDurbin solves the Yule-Walker equations for an AR(p) fit.
func levinsonDurbin(w []float64, p int) []float64 {
	r := make([]float64, p+1)
	for k := 0; k <= p; k++ {
		r[k] = autocorr(w, k)
	}
	r[0] = 1

	phi := make([]float64, p)
	prev := make([]float64, p)
	v := 1.0
	for k := 1; k <= p; k++ {
		acc := r[k]
		for i := 1; i < k; i++ {
			acc -= prev[i-1] * r[k-i]
		}
		var ref float64
		if v != 0 {
			ref = acc / v
		}
		phi[k-1] = ref
		for i := 1; i < k; i++ {
			phi[i-1] = prev[i-1] - ref*prev[k-i-1]
		}
		v *= 1 - ref*ref
		copy(prev, phi)
	}
	// Soft-clip so the optimizer starts inside the stationarity guard.
	for i := range phi {
		phi[i] = math.Max(-0.95, math.Min(0.95, phi[i]))
	}
	return phi
}

func finiteAll(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
