package treetime

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//MultiplyDists will multiply several neg-log-likelihood distributions by
//summing them pointwise on a shared grid. When any input is a near-delta
//constraint the shared grid is simply the deduplicated union of all input
//grids; otherwise a fresh adaptive grid is built around the mean of the
//inputs' optima, scaled by their spread. The minimum of the sum is
//subtracted so the returned distribution bottoms out at exactly zero, and
//the subtracted amount is folded into the returned prefactor along with the
//sum of the input prefactors.
func MultiplyDists(dists []*Dist, prefactors []float64, conf TimeConf) (*Dist, float64, error) {
	if len(dists) == 0 {
		return nil, 0, fmt.Errorf("combine: no distributions supplied")
	}
	pre := floats.Sum(prefactors)

	nearDelta := false
	for _, d := range dists {
		if d.NearDelta(conf.UnionGridMax) {
			nearDelta = true
			break
		}
	}

	var grid []float64
	if nearDelta {
		for _, d := range dists {
			grid = append(grid, d.X...)
		}
		sort.Float64s(grid)
		grid = dedupeSorted(grid)
	} else {
		opts := make([]float64, len(dists))
		for k, d := range dists {
			opts[k] = d.ArgminX()
		}
		spread := floats.Max(opts) - floats.Min(opts)
		scale := 2 * math.Max(math.Abs(spread), 0.01)
		grid = MakeNodeGrid(stat.Mean(opts, nil), conf.GridSize, scale, conf)
	}

	y := make([]float64, len(grid))
	for _, d := range dists {
		for j, x := range grid {
			y[j] += d.Eval(x)
		}
	}
	m := floats.Min(y)
	for j := range y {
		y[j] -= m
	}
	pre += m

	y[0] = -conf.MinLog
	y[len(y)-1] = -conf.MinLog
	y[1] = -conf.MinLog / 2
	y[len(y)-2] = -conf.MinLog / 2

	d, err := NewDist(grid, y)
	if err != nil {
		return nil, 0, err
	}
	return d, pre, nil
}

//dedupeSorted removes exact repeats from a sorted slice in place
func dedupeSorted(xs []float64) []float64 {
	out := xs[:0]
	for i, x := range xs {
		if i > 0 && x == out[len(out)-1] {
			continue
		}
		out = append(out, x)
	}
	return out
}
