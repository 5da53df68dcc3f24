package forecast

import (
	"math"
	"sort"
)

// nelderMead minimizes f starting from x0 using the standard downhill simplex
// (reflection, expansion, contraction, shrink). Derivative-free, which suits
// the CSS objective: it is smooth almost everywhere but has penalty cliffs at
// the stationarity boundary.
func nelderMead(f func([]float64) float64, x0 []float64) []float64 {
	const (
		alpha = 1.0
		gamma = 2.0
		rho   = 0.5
		sigma = 0.5
		tol   = 1e-9
	)
	dim := len(x0)
	maxIter := 250 * dim

	type vertex struct {
		x []float64
		v float64
	}

	simplex := make([]vertex, dim+1)
	simplex[0] = vertex{x: append([]float64(nil), x0...), v: f(x0)}
	for i := 0; i < dim; i++ {
		x := append([]float64(nil), x0...)
		step := 0.1
		if x[i] != 0 {
			step = 0.1 * math.Abs(x[i])
		}
		x[i] += step
		simplex[i+1] = vertex{x: x, v: f(x)}
	}

	for iter := 0; iter < maxIter; iter++ {
		sort.Slice(simplex, func(i, j int) bool { return simplex[i].v < simplex[j].v })
		if math.Abs(simplex[dim].v-simplex[0].v) <= tol*(math.Abs(simplex[0].v)+tol) {
			break
		}

		// Centroid of all but the worst vertex.
		centroid := make([]float64, dim)
		for _, vt := range simplex[:dim] {
			for j, c := range vt.x {
				centroid[j] += c / float64(dim)
			}
		}

		worst := simplex[dim]
		reflected := blend(centroid, worst.x, 1+alpha, -alpha)
		rv := f(reflected)

		switch {
		case rv < simplex[0].v:
			expanded := blend(centroid, worst.x, 1+alpha*gamma, -alpha*gamma)
			if ev := f(expanded); ev < rv {
				simplex[dim] = vertex{x: expanded, v: ev}
			} else {
				simplex[dim] = vertex{x: reflected, v: rv}
			}
		case rv < simplex[dim-1].v:
			simplex[dim] = vertex{x: reflected, v: rv}
		default:
			contracted := blend(centroid, worst.x, 1-rho, rho)
			if cv := f(contracted); cv < worst.v {
				simplex[dim] = vertex{x: contracted, v: cv}
			} else {
				for i := 1; i <= dim; i++ {
					simplex[i].x = blend(simplex[0].x, simplex[i].x, 1-sigma, sigma)
					simplex[i].v = f(simplex[i].x)
				}
			}
		}
	}

	sort.Slice(simplex, func(i, j int) bool { return simplex[i].v < simplex[j].v })
	return simplex[0].x
}

func blend(a, b []float64, wa, wb float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = wa*a[i] + wb*b[i]
	}
	return out
}
