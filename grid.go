package treetime

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

//linspace fills n evenly spaced values from a to b inclusive
func linspace(a, b float64, n int) []float64 {
	return floats.Span(make([]float64, n), a, b)
}

//MakeNodeGrid will build a grid of candidate node positions around center:
//dense near the center, quadratically sparser toward the edges, with the
//global MinT/MaxT sentinel points appended on both ends. scale sets how far
//the interior of the grid reaches on each side of the center.
func MakeNodeGrid(center float64, gridSize int, scale float64, conf TimeConf) []float64 {
	nl := gridSize/2 - 1
	nr := gridSize / 2
	grid := make([]float64, 0, nl+nr+2)
	grid = append(grid, conf.MinT)
	for _, v := range linspace(1, 1e-5, nl) {
		grid = append(grid, center-scale*v*v)
	}
	for _, v := range linspace(0, 1, nr) {
		grid = append(grid, center+scale*v*v)
	}
	grid = append(grid, conf.MaxT)
	return grid
}

//BranchLenGrid will build the sampling grid for a branch length likelihood.
//A branch of effectively zero length gets a one-sided grid reaching a
//fraction of the tree depth, protecting against degenerate branches. Any
//other branch gets an asymmetric grid: bounded by zero on the short side,
//reaching three sigma past the current length on the long side, since
//branch length posteriors are typically right-skewed. Two sentinel points
//lead the grid and one trails it; the caller overwrites the outermost
//values on both sides.
func BranchLenGrid(brlen, avgBrLen, maxAbsT float64, conf TimeConf) []float64 {
	n := conf.BranchGrid
	var interior []float64
	if brlen < conf.ZeroBranch {
		sigma := math.Max(0.01, 0.1*maxAbsT)
		for _, v := range linspace(0, 1, n) {
			interior = append(interior, sigma*v*v)
		}
	} else {
		sigma := math.Max(avgBrLen, brlen)
		for _, v := range linspace(1, 0, n/2) {
			interior = append(interior, brlen*(1-v*v))
		}
		for _, v := range linspace(0, 1, n/2) {
			interior = append(interior, brlen+3*sigma*v*v)
		}
	}
	grid := make([]float64, 0, len(interior)+3)
	grid = append(grid, conf.MinT, -1e-30)
	for _, g := range interior {
		// drop duplicates where the two half grids meet
		if g <= grid[len(grid)-1] {
			continue
		}
		grid = append(grid, g)
	}
	grid = append(grid, conf.MaxT)
	return grid
}
