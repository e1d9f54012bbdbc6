package treetime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistRejectsBadGrids(t *testing.T) {
	_, err := NewDist([]float64{0, 1}, []float64{0})
	assert.Error(t, err)

	_, err = NewDist([]float64{0, 1, 1}, []float64{0, 1, 2})
	assert.Error(t, err)

	_, err = NewDist([]float64{0, 2, 1}, []float64{0, 1, 2})
	assert.Error(t, err)

	_, err = NewDist([]float64{0}, []float64{1})
	assert.Error(t, err)
}

func TestDistEval(t *testing.T) {
	d, err := NewDist([]float64{0, 1, 2}, []float64{5, 0, 5})
	require.NoError(t, err)

	assert.InDelta(t, 2.5, d.Eval(0.5), 1e-12)
	assert.InDelta(t, 0.0, d.Eval(1.0), 1e-12)
	// queries beyond the grid return the boundary values
	assert.InDelta(t, 5.0, d.Eval(-10), 1e-12)
	assert.InDelta(t, 5.0, d.Eval(10), 1e-12)
}

func TestDistArgmin(t *testing.T) {
	d, err := NewDist([]float64{-1, 0, 1, 2}, []float64{9, 3, 1, 8})
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.ArgminX())
	assert.Equal(t, 1.0, d.MinY())
}

func TestDistNearDelta(t *testing.T) {
	conf := DefaultTimeConf()
	d, err := deltaDist(0.5, conf)
	require.NoError(t, err)
	assert.True(t, d.NearDelta(conf.UnionGridMax))
	assert.InDelta(t, 0.5, d.ArgminX(), 1e-9)

	wide, err := NewDist(linspace(0, 1, 20), make([]float64, 20))
	require.NoError(t, err)
	assert.False(t, wide.NearDelta(conf.UnionGridMax))
}

func TestDeltaDistAtZero(t *testing.T) {
	conf := DefaultTimeConf()
	d, err := deltaDist(0, conf)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.ArgminX())
}

func TestDeltaDistNegativeCenter(t *testing.T) {
	conf := DefaultTimeConf()
	d, err := deltaDist(-0.25, conf)
	require.NoError(t, err)
	assert.InDelta(t, -0.25, d.ArgminX(), 1e-9)
}
