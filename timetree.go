package treetime

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
)

//InitDateConstraints will fit the date regression, seed every dated node
//with a near-delta time distribution, rotate the sequence profiles into the
//model eigenspace and build the branch length distributions. Must run after
//the dates are set and before MLT.
func (tt *TimeTree) InitDateConstraints(m EvoModel) error {
	tt.SetRootDists()
	tt.DATE2DIST = FitDateConversion(tt)
	if !tt.DATE2DIST.Valid {
		return fmt.Errorf("treetime: date regression is degenerate (%d dated nodes, slope %g)",
			tt.DATE2DIST.N, tt.DATE2DIST.Slope)
	}

	tt.MAXABST = 0
	for _, n := range tt.NODES {
		n.PREFAC = 0
		if n.HASDATE {
			n.ABST = tt.DATE2DIST.TimeFromDate(float64(n.RAWDATE))
			d, err := deltaDist(n.ABST, tt.CONF)
			if err != nil {
				return fmt.Errorf("treetime: seeding node %q: %w", n.NAME, err)
			}
			n.TIMEDIST = d
			n.STATE = Seeded
		} else {
			// raw clock estimate, not corrected
			n.ABST = n.ROOTDIST
			n.TIMEDIST = nil
			n.STATE = Pending
		}
		if n.ABST > tt.MAXABST {
			tt.MAXABST = n.ABST
		}
	}

	if err := tt.SetRotatedProfiles(m); err != nil {
		return err
	}
	avg := AvgBranchLength(tt)
	for i := range tt.NODES {
		if err := tt.makeBranchLenDist(i, m, avg); err != nil {
			return err
		}
	}
	return nil
}

//MLT will run the two-pass belief propagation: messages up from the leaves
//to the root, then down from the root, finalizing every node's time
//position, branch length and calendar date. One pass in each direction, no
//iteration to convergence.
func (tt *TimeTree) MLT() error {
	tt.WARNS = nil
	if err := tt.mlTLeavesRoot(); err != nil {
		return err
	}
	return tt.mlTRootLeaves()
}

//mlTLeavesRoot propagates up-messages in postorder. Terminal nodes are
//skipped: they are either seeded already or get resolved on the way back
//down. An internal node combines one convolved message per informative
//child; with no informative children it stays pending.
func (tt *TimeTree) mlTLeavesRoot() error {
	for _, i := range tt.PostorderArray() {
		n := tt.NODES[i]
		if len(n.CHLD) == 0 {
			continue
		}
		if n.TIMEDIST != nil {
			continue
		}
		var informative []int
		for _, c := range n.CHLD {
			if tt.NODES[c].TIMEDIST != nil {
				informative = append(informative, c)
			}
		}
		if len(informative) == 0 {
			continue
		}
		msgs, err := tt.convolveChildren(informative)
		if err != nil {
			return err
		}
		pres := make([]float64, len(informative))
		for k, c := range informative {
			pres[k] = tt.NODES[c].PREFAC
		}
		comb, pre, err := MultiplyDists(msgs, pres, tt.CONF)
		if err != nil {
			return fmt.Errorf("treetime: combining children of node %q: %w", n.NAME, err)
		}
		n.TIMEDIST = comb
		n.PREFAC += pre
		n.STATE = Resolved
	}
	return nil
}

//convolveChildren sends each informative child's message across its branch.
//Sibling messages only read the child being convolved, so with more than
//one worker they run concurrently and join before the combine.
func (tt *TimeTree) convolveChildren(children []int) ([]*Dist, error) {
	msgs := make([]*Dist, len(children))
	if tt.CONF.Workers <= 1 || len(children) == 1 {
		for k, c := range children {
			cn := tt.NODES[c]
			d, err := Convolve(cn.TIMEDIST, cn.BRLENDIST, true, tt.CONF, tt.MAXABST)
			if err != nil {
				return nil, fmt.Errorf("treetime: up-message from node %q: %w", cn.NAME, err)
			}
			msgs[k] = d
		}
		return msgs, nil
	}
	errs := make([]error, len(children))
	sem := make(chan struct{}, tt.CONF.Workers)
	var wg sync.WaitGroup
	for k, c := range children {
		wg.Add(1)
		go func(k, c int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			cn := tt.NODES[c]
			msgs[k], errs[k] = Convolve(cn.TIMEDIST, cn.BRLENDIST, true, tt.CONF, tt.MAXABST)
		}(k, c)
	}
	wg.Wait()
	for k, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("treetime: up-message from node %q: %w", tt.NODES[children[k]].NAME, err)
		}
	}
	return msgs, nil
}

//mlTRootLeaves propagates down-messages in preorder. The root's up-pass
//distribution is finalized directly. Every other node receives the parent's
//finalized distribution convolved forward across its own branch; nodes that
//already hold a distribution combine it with the message, unconstrained
//leaves adopt the message outright.
func (tt *TimeTree) mlTRootLeaves() error {
	for _, i := range tt.PreorderArray() {
		n := tt.NODES[i]
		if n.PAR == -1 {
			if n.TIMEDIST == nil {
				return fmt.Errorf("treetime: the root has no time distribution, no dated nodes below it")
			}
			tt.setFinalDate(i)
			continue
		}
		par := tt.NODES[n.PAR]
		msg, err := Convolve(par.TIMEDIST, n.BRLENDIST, false, tt.CONF, tt.MAXABST)
		if err != nil {
			return fmt.Errorf("treetime: down-message to node %q: %w", n.NAME, err)
		}
		if n.TIMEDIST != nil {
			final, pre, err := MultiplyDists([]*Dist{msg, n.TIMEDIST},
				[]float64{par.PREFAC, n.PREFAC}, tt.CONF)
			if err != nil {
				return fmt.Errorf("treetime: combining node %q with its root message: %w", n.NAME, err)
			}
			if final.ArgminX() < par.TIMEDIST.ArgminX() {
				w := ConsistencyWarning{
					Node:       n.NAME,
					Time:       final.ArgminX(),
					ParentTime: par.TIMEDIST.ArgminX(),
				}
				tt.WARNS = append(tt.WARNS, w)
				slog.Warn("node resolved earlier than its parent",
					"node", w.Node, "time", w.Time, "parent_time", w.ParentTime)
			}
			n.TIMEDIST = final
			n.PREFAC = pre
		} else {
			n.TIMEDIST = msg
			n.PREFAC = par.PREFAC
		}
		tt.setFinalDate(i)
	}
	return nil
}

//setFinalDate reads the optimum off the node's distribution and derives the
//branch length, root distance and calendar date from the parent's already
//finalized values. A negative branch length here means the inference went
//wrong somewhere above; it is kept as-is for inspection.
func (tt *TimeTree) setFinalDate(i int) {
	n := tt.NODES[i]
	n.ABST = n.TIMEDIST.ArgminX()
	if n.PAR != -1 {
		par := tt.NODES[n.PAR]
		n.LEN = n.ABST - par.ABST
		n.ROOTDIST = par.ROOTDIST + n.LEN
	} else {
		n.LEN = 0
		n.ROOTDIST = 0
	}
	if tt.DATE2DIST != nil && tt.DATE2DIST.Valid {
		n.DATE = tt.DATE2DIST.DateFromTime(n.ABST)
	}
	n.STATE = Finalized
}

//ScoreBranches will score every branch by how far its length sits from the
//optimum of its own length distribution, normalized by the largest
//deviation on the tree
func (tt *TimeTree) ScoreBranches() {
	devs := make([]float64, len(tt.NODES))
	maxDev := 0.
	for i, n := range tt.NODES {
		if n.BRLENDIST == nil {
			continue
		}
		opt := 0.0
		if r := MinimizeScalarBounded(n.BRLENDIST.Eval, 0.0, 2.0*tt.MAXABST); r.OK {
			opt = r.X
		}
		devs[i] = math.Abs(opt - n.LEN)
		if devs[i] > maxDev {
			maxDev = devs[i]
		}
	}
	if maxDev == 0 {
		return
	}
	for i, n := range tt.NODES {
		if n.LEN < 0 {
			n.SCORE = 1.0
			continue
		}
		n.SCORE = devs[i] / maxDev
	}
}
