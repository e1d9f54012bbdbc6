package treetime

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
)

//Convolve will propagate a time distribution across one branch, computing
//the neg-log-likelihood distribution over the other endpoint's position by
//marginalizing over every feasible position of the source node.
//
//inverseTime true means the message travels from a node toward its parent,
//against the time axis, so the candidate parent sits at source minus branch
//length. inverseTime false sends the message from a parent toward a child.
//
//The steps: center a fresh target grid at the estimated optimum, form the
//matrix of pairwise time differences between the two grids, clip it to
//[MinT, MaxT], score every difference against the branch distribution,
//clamp the surface edges with the two-tier sentinels to suppress boundary
//artifacts, convert to linear probability, weight by the source's linear
//probability and integrate over source positions with the trapezoid rule,
//then return to neg-log form with an additive floor under the logarithm.
func Convolve(src, branch *Dist, inverseTime bool, conf TimeConf, maxAbsT float64) (*Dist, error) {
	optSrc := src.ArgminX()
	optBr := 0.0
	if r := MinimizeScalarBounded(branch.Eval, 0.0, 2.0*maxAbsT); r.OK {
		optBr = r.X
	}
	center := optSrc - optBr
	if !inverseTime {
		center = optSrc + optBr
	}

	srcX := src.X
	tgtX := MakeNodeGrid(center, conf.GridSize, maxAbsT*conf.VarianceFrac, conf)
	ns, nt := len(srcX), len(tgtX)

	nll := mat.NewDense(ns, nt, nil)
	for i := 0; i < ns; i++ {
		for j := 0; j < nt; j++ {
			diff := srcX[i] - tgtX[j]
			if !inverseTime {
				diff = -diff
			}
			if diff < conf.MinT {
				diff = conf.MinT
			} else if diff > conf.MaxT {
				diff = conf.MaxT
			}
			nll.Set(i, j, branch.Eval(diff))
		}
	}
	clampSurface(nll, conf)

	probSrc := make([]float64, ns)
	for i := 0; i < ns; i++ {
		probSrc[i] = math.Exp(-src.Y[i])
	}

	integrand := make([]float64, ns)
	out := make([]float64, nt)
	for j := 0; j < nt; j++ {
		for i := 0; i < ns; i++ {
			integrand[i] = math.Exp(-nll.At(i, j)) * probSrc[i]
		}
		out[j] = -math.Log(integrate.Trapezoidal(srcX, integrand) + conf.ProbFloor)
	}
	out[0] = -conf.MinLog
	out[nt-1] = -conf.MinLog
	out[1] = -conf.MinLog / 2
	out[nt-2] = -conf.MinLog / 2

	return NewDist(tgtX, out)
}

//clampSurface overwrites the two outermost rows and columns of the branch
//likelihood surface with the sentinel magnitudes, inner tier first
func clampSurface(nll *mat.Dense, conf TimeConf) {
	r, c := nll.Dims()
	inner := -conf.MinLog / 2
	outer := -conf.MinLog
	for j := 0; j < c; j++ {
		nll.Set(1, j, inner)
		nll.Set(r-2, j, inner)
	}
	for i := 0; i < r; i++ {
		nll.Set(i, 1, inner)
		nll.Set(i, c-2, inner)
	}
	for j := 0; j < c; j++ {
		nll.Set(0, j, outer)
		nll.Set(r-1, j, outer)
	}
	for i := 0; i < r; i++ {
		nll.Set(i, 0, outer)
		nll.Set(i, c-1, outer)
	}
}
