package treetime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//quadNodeDist builds a smooth position distribution with a basin at center
func quadNodeDist(t *testing.T, center float64, conf TimeConf) *Dist {
	t.Helper()
	grid := MakeNodeGrid(center, 40, 0.5, conf)
	y := make([]float64, len(grid))
	for j := range grid {
		y[j] = (grid[j] - center) * (grid[j] - center)
	}
	y[0] = -conf.MinLog
	y[1] = -conf.MinLog / 2
	y[len(y)-2] = -conf.MinLog / 2
	y[len(y)-1] = -conf.MinLog
	d, err := NewDist(grid, y)
	require.NoError(t, err)
	return d
}

func TestMultiplyDistsNormalization(t *testing.T) {
	conf := DefaultTimeConf()
	d1 := quadNodeDist(t, 0.0, conf)
	d2 := quadNodeDist(t, 0.1, conf)

	comb, pre, err := MultiplyDists([]*Dist{d1, d2}, []float64{1.5, 2.5}, conf)
	require.NoError(t, err)

	// the combined curve bottoms out at exactly zero
	assert.Equal(t, 0.0, comb.MinY())

	// the prefactor is the sum of the inputs plus the subtracted minimum
	subtracted := pre - 4.0
	assert.GreaterOrEqual(t, subtracted, 0.0)
	lowest := d1.Eval(comb.ArgminX()) + d2.Eval(comb.ArgminX())
	assert.InDelta(t, subtracted, lowest, 1e-9)

	// the optimum sits between the two input optima
	assert.Greater(t, comb.ArgminX(), -0.01)
	assert.Less(t, comb.ArgminX(), 0.11)
}

func TestMultiplyDistsUnionGridForDelta(t *testing.T) {
	conf := DefaultTimeConf()
	spike, err := deltaDist(0.05, conf)
	require.NoError(t, err)
	broad := quadNodeDist(t, 0.06, conf)

	comb, _, err := MultiplyDists([]*Dist{spike, broad}, []float64{0, 0}, conf)
	require.NoError(t, err)

	// the union grid keeps the constraint's own points, so the spike wins
	assert.Contains(t, comb.X, 0.05)
	assert.InDelta(t, 0.05, comb.ArgminX(), 1e-9)
}

func TestMultiplyDistsSentinels(t *testing.T) {
	conf := DefaultTimeConf()
	d1 := quadNodeDist(t, 0.2, conf)
	comb, _, err := MultiplyDists([]*Dist{d1}, []float64{0}, conf)
	require.NoError(t, err)
	n := len(comb.Y)
	assert.Equal(t, -conf.MinLog, comb.Y[0])
	assert.Equal(t, -conf.MinLog, comb.Y[n-1])
	assert.Equal(t, -conf.MinLog/2, comb.Y[1])
	assert.Equal(t, -conf.MinLog/2, comb.Y[n-2])
}

func TestMultiplyDistsEmpty(t *testing.T) {
	conf := DefaultTimeConf()
	_, _, err := MultiplyDists(nil, nil, conf)
	assert.Error(t, err)
}
