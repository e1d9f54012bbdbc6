package treetime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitDateConversionRecovery(t *testing.T) {
	tt := NewTimeTree(DefaultTimeConf())
	root := tt.AddNode("root", -1, 0)
	for i := 0; i < 30; i++ {
		tip := tt.AddNode("t", root, 0)
		n := tt.NODES[tip]
		n.RAWDATE = i
		n.HASDATE = true
		n.ROOTDIST = 2.0*float64(i) + 5.0
	}
	dc := FitDateConversion(tt)
	require.True(t, dc.Valid)
	assert.Equal(t, 30, dc.N)
	assert.InDelta(t, 2.0, dc.Slope, 1e-3)
	assert.InDelta(t, 5.0, dc.Intercept, 1e-3)
	assert.InDelta(t, 1.0, dc.R, 1e-6)
}

func TestFitDateConversionDegenerate(t *testing.T) {
	tt := NewTimeTree(DefaultTimeConf())
	root := tt.AddNode("root", -1, 0)
	tip := tt.AddNode("only", root, 0.5)
	tt.NODES[tip].RAWDATE = 10
	tt.NODES[tip].HASDATE = true
	tt.NODES[tip].ROOTDIST = 0.5

	dc := FitDateConversion(tt)
	assert.False(t, dc.Valid)
	assert.Equal(t, 1, dc.N)
}

func TestDateTimeRoundtrip(t *testing.T) {
	dc := &DateConversion{Slope: 0.001, Intercept: 0.02, Valid: true}
	for _, date := range []float64{0, 10, 365, 5000} {
		got := dc.DateFromTime(dc.TimeFromDate(date))
		assert.InDelta(t, date, got, 1e-9)
	}
}

func TestDateFromTimeNegativeInverted(t *testing.T) {
	dc := &DateConversion{Slope: 0.001, Intercept: 0, Valid: true}
	// a time before the regression origin converts to a negative date,
	// which comes back as its absolute value
	assert.InDelta(t, 10.0, dc.DateFromTime(-0.01), 1e-9)
}

func TestBranchLenFromDates(t *testing.T) {
	dc := &DateConversion{Slope: 0.002, Valid: true}
	assert.InDelta(t, 0.1, dc.BranchLenFromDates(100, 50), 1e-12)
	assert.InDelta(t, 0.1, dc.BranchLenFromDates(50, 100), 1e-12)
}
