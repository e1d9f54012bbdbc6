package treetime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//quadBranchDist builds a branch length distribution with a quadratic basin
//at optLen, on the standard branch grid with sentinels in place
func quadBranchDist(t *testing.T, optLen float64, conf TimeConf) *Dist {
	t.Helper()
	grid := BranchLenGrid(optLen, optLen, 1.0, conf)
	y := make([]float64, len(grid))
	for j := 2; j < len(grid)-2; j++ {
		y[j] = 50 * (grid[j] - optLen) * (grid[j] - optLen)
	}
	y[0] = -conf.MinLog
	y[1] = -conf.MinLog / 2
	y[len(y)-2] = -conf.MinLog / 2
	y[len(y)-1] = -conf.MinLog
	d, err := NewDist(grid, y)
	require.NoError(t, err)
	return d
}

func TestConvolveDeltaBackward(t *testing.T) {
	conf := DefaultTimeConf()
	branch := quadBranchDist(t, 0.2, conf)
	src, err := deltaDist(1.0, conf)
	require.NoError(t, err)

	res, err := Convolve(src, branch, true, conf, 1.0)
	require.NoError(t, err)
	// a hard constraint at T pushed backward over a branch of optimal
	// length L lands near T-L
	assert.InDelta(t, 0.8, res.ArgminX(), 0.02)
}

func TestConvolveDeltaForward(t *testing.T) {
	conf := DefaultTimeConf()
	branch := quadBranchDist(t, 0.2, conf)
	src, err := deltaDist(0.5, conf)
	require.NoError(t, err)

	res, err := Convolve(src, branch, false, conf, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, res.ArgminX(), 0.02)
}

func TestConvolveSentinelsReapplied(t *testing.T) {
	conf := DefaultTimeConf()
	branch := quadBranchDist(t, 0.1, conf)
	src, err := deltaDist(0.4, conf)
	require.NoError(t, err)

	res, err := Convolve(src, branch, true, conf, 1.0)
	require.NoError(t, err)
	n := len(res.Y)
	assert.Equal(t, -conf.MinLog, res.Y[0])
	assert.Equal(t, -conf.MinLog, res.Y[n-1])
	assert.Equal(t, -conf.MinLog/2, res.Y[1])
	assert.Equal(t, -conf.MinLog/2, res.Y[n-2])
	assert.Equal(t, conf.MinT, res.X[0])
	assert.Equal(t, conf.MaxT, res.X[n-1])
}

func TestConvolveSmoothSource(t *testing.T) {
	conf := DefaultTimeConf()
	branch := quadBranchDist(t, 0.15, conf)

	// a broad source basin at 0.6
	grid := MakeNodeGrid(0.6, conf.GridSize, 0.25, conf)
	y := make([]float64, len(grid))
	for j := range grid {
		y[j] = 20 * (grid[j] - 0.6) * (grid[j] - 0.6)
	}
	y[0] = -conf.MinLog
	y[1] = -conf.MinLog / 2
	y[len(y)-2] = -conf.MinLog / 2
	y[len(y)-1] = -conf.MinLog
	src, err := NewDist(grid, y)
	require.NoError(t, err)

	res, err := Convolve(src, branch, true, conf, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, res.ArgminX(), 0.05)
}
