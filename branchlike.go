package treetime

import (
	"fmt"
	"math"
)

//makeBranchLenDist will build the neg-log-likelihood distribution over the
//length of the branch connecting node i to its parent, scoring the model at
//every interior grid point. The root carries no branch distribution.
func (tt *TimeTree) makeBranchLenDist(i int, m EvoModel, avgBrLen float64) error {
	n := tt.NODES[i]
	if n.PAR == -1 {
		n.BRLENDIST = nil
		return nil
	}
	par := tt.NODES[n.PAR]
	if par.PRFL == nil || n.PRFR == nil {
		return fmt.Errorf("treetime: node %q is missing rotated profiles", n.NAME)
	}
	grid := BranchLenGrid(n.LEN, avgBrLen, tt.MAXABST, tt.CONF)
	y := make([]float64, len(grid))
	for j := 2; j < len(grid)-2; j++ {
		y[j] = -m.BranchLogLike(par.PRFL, n.PRFR, grid[j])
	}
	y[0] = -tt.CONF.MinLog
	y[1] = -tt.CONF.MinLog / 2
	y[len(y)-2] = -tt.CONF.MinLog / 2
	y[len(y)-1] = -tt.CONF.MinLog
	d, err := NewDist(grid, y)
	if err != nil {
		return fmt.Errorf("treetime: branch grid for node %q: %w", n.NAME, err)
	}
	n.BRLENDIST = d
	return nil
}

//deltaDist builds the near-delta distribution seeding a node whose time
//position is pinned by a known sampling date
func deltaDist(t float64, conf TimeConf) (*Dist, error) {
	w := conf.DeltaWidth * math.Abs(t)
	if w == 0 {
		w = conf.DeltaWidth
	}
	x := []float64{conf.MinT, t - w, t, t + w, conf.MaxT}
	y := []float64{
		-conf.MinLog,
		-conf.MinLog / 2,
		-math.Log(1e10),
		-conf.MinLog / 2,
		-conf.MinLog,
	}
	return NewDist(x, y)
}
