package forecast

import (
	"math"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	maxP = 5
	maxQ = 5
	maxD = 2

	// Differencing threshold: a lag-1 autocorrelation this close to one is
	// treated as a unit root.
	unitRootACF = 0.90
)

// fallbackOrder is used when the stepwise search cannot fit a single
// candidate. A slightly suboptimal model beats no forecast.
var fallbackOrder = domain.ModelOrder{P: 1, D: 1, Q: 1}

// SelectOrder picks an ARIMA order for the series with a stepwise AIC search
// over p,q in [0,5], d chosen by a stationarity heuristic. It never fails:
// any internal error degrades to the fixed default order.
func SelectOrder(series []float64) domain.ModelOrder {
	d := chooseD(series)

	type cand struct{ p, q int }
	tried := map[cand]float64{}

	eval := func(c cand) float64 {
		if c.p < 0 || c.q < 0 || c.p > maxP || c.q > maxQ {
			return math.Inf(1)
		}
		if v, ok := tried[c]; ok {
			return v
		}
		m, err := Fit(series, c.p, d, c.q)
		v := math.Inf(1)
		if err == nil && !math.IsNaN(m.AIC) {
			v = m.AIC
		}
		tried[c] = v
		return v
	}

	// Stepwise search in the style of auto_arima: score a small starting set,
	// then walk the neighborhood of the incumbent until no move improves AIC.
	best := cand{0, 0}
	bestAIC := math.Inf(1)
	for _, c := range []cand{{0, 0}, {1, 0}, {0, 1}, {2, 2}} {
		if v := eval(c); v < bestAIC {
			best, bestAIC = c, v
		}
	}

	for improved := true; improved; {
		improved = false
		for _, c := range []cand{
			{best.p + 1, best.q}, {best.p - 1, best.q},
			{best.p, best.q + 1}, {best.p, best.q - 1},
			{best.p + 1, best.q + 1}, {best.p - 1, best.q - 1},
		} {
			if v := eval(c); v < bestAIC {
				best, bestAIC = c, v
				improved = true
			}
		}
	}

	if math.IsInf(bestAIC, 1) {
		log.Warn().
			Int("points", len(series)).
			Msg("arima order search failed, falling back to (1,1,1)")
		return fallbackOrder
	}
	return domain.ModelOrder{P: best.p, D: d, Q: best.q}
}

// chooseD differences the series while its lag-1 autocorrelation still looks
// like a unit root, up to twice. A flat series has zero autocorrelation here
// and stays undifferenced.
func chooseD(series []float64) int {
	cur := append([]float64(nil), series...)
	d := 0
	for d < maxD && len(cur) > 3 && autocorr(cur, 1) > unitRootACF {
		cur = diff(cur, 1)
		d++
	}
	return d
}
