package treetime

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

//Dist is a negative log-likelihood curve sampled on a strictly increasing
//grid and interpolated piecewise linearly between the samples. The two
//outermost points on each side carry large sentinel values so that a query
//near the boundary can never come back spuriously favorable. A Dist is
//never mutated after construction; combining distributions always builds a
//new one.
type Dist struct {
	X []float64 // grid, strictly increasing
	Y []float64 // neg-log values, parallel to X

	pl interp.PiecewiseLinear
}

//NewDist will build a distribution from a grid and matching neg-log values
func NewDist(x, y []float64) (*Dist, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("dist: grid has %d points but %d values", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("dist: need at least two grid points, have %d", len(x))
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("dist: grid not strictly increasing at index %d (%g then %g)", i, x[i-1], x[i])
		}
	}
	d := &Dist{X: x, Y: y}
	if err := d.pl.Fit(x, y); err != nil {
		return nil, fmt.Errorf("dist: %w", err)
	}
	return d, nil
}

//Eval will interpolate the neg-log value at t. Queries beyond the grid ends
//return the sentinel values stored there.
func (d *Dist) Eval(t float64) float64 {
	return d.pl.Predict(t)
}

//ArgminX returns the grid point carrying the lowest neg-log value. This is
//an argmin over the sampled points, not a continuous root find, so its
//accuracy is bounded by the local grid spacing.
func (d *Dist) ArgminX() float64 {
	return d.X[floats.MinIdx(d.Y)]
}

//MinY returns the lowest sampled neg-log value
func (d *Dist) MinY() float64 {
	return floats.Min(d.Y)
}

//NearDelta reports whether the grid is small enough for the curve to act as
//a point constraint, the shape used to seed nodes with known dates.
func (d *Dist) NearDelta(maxPts int) bool {
	return len(d.X) < maxPts
}
