package treetime

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

//NodeState tracks how far a node has moved through the two traversal passes
type NodeState int

const (
	Unseeded  NodeState = iota
	Seeded              // carries a date constraint, time distribution is a spike
	Pending             // no constraint yet, will be resolved on the way down
	Resolved            // internal node combined from its children
	Finalized           // time, branch length and date are set
)

func (s NodeState) String() string {
	switch s {
	case Seeded:
		return "seeded"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Finalized:
		return "finalized"
	}
	return "unseeded"
}

//Node is one vertex of the arena tree. Topology is held as integer indices
//into TimeTree.NODES, so there are no pointer cycles between parents and
//children.
type Node struct {
	NAME     string
	PAR      int   // parent index, -1 at the root
	CHLD     []int // child indices
	LEN      float64
	ROOTDIST float64
	RAWDATE  int  // sampling date in days before present
	HASDATE  bool // false means unconstrained
	ABST     float64
	DATE     float64
	STATE    NodeState

	TIMEDIST  *Dist   // neg-log-likelihood over the node's time position
	BRLENDIST *Dist   // neg-log-likelihood over the branch to the parent, nil at the root
	PREFAC    float64 // running log-scale prefactor paired with TIMEDIST
	SCORE     float64

	PROFILE *mat.Dense // per-site residue probabilities, supplied externally
	PRFL    *mat.Dense // profile rotated into the model eigenspace (left)
	PRFR    *mat.Dense // profile rotated into the model eigenspace (right)
}

//TimeTree is an arena of nodes addressed by index
type TimeTree struct {
	NODES     []*Node
	ROOT      int
	CONF      TimeConf
	DATE2DIST *DateConversion
	MAXABST   float64 // deepest node position on the internal time scale
	WARNS     []ConsistencyWarning
}

//ConsistencyWarning records a node whose resolved time position landed
//earlier than its parent's, which points at a convolution or combination
//problem upstream
type ConsistencyWarning struct {
	Node       string
	Time       float64
	ParentTime float64
}

//NewTimeTree will return an empty arena using the supplied constants
func NewTimeTree(conf TimeConf) *TimeTree {
	return &TimeTree{ROOT: -1, CONF: conf}
}

//AddNode will append a node to the arena and wire it to its parent. Pass -1
//as the parent to create the root.
func (tt *TimeTree) AddNode(name string, par int, brlen float64) int {
	i := len(tt.NODES)
	n := &Node{NAME: name, PAR: par, LEN: brlen}
	tt.NODES = append(tt.NODES, n)
	if par == -1 {
		tt.ROOT = i
	} else {
		tt.NODES[par].CHLD = append(tt.NODES[par].CHLD, i)
	}
	return i
}

//PreorderArray will return the node indices in preorder
func (tt *TimeTree) PreorderArray() []int {
	out := make([]int, 0, len(tt.NODES))
	var walk func(int)
	walk = func(i int) {
		out = append(out, i)
		for _, c := range tt.NODES[i].CHLD {
			walk(c)
		}
	}
	walk(tt.ROOT)
	return out
}

//PostorderArray will return the node indices in postorder
func (tt *TimeTree) PostorderArray() []int {
	out := make([]int, 0, len(tt.NODES))
	var walk func(int)
	walk = func(i int) {
		for _, c := range tt.NODES[i].CHLD {
			walk(c)
		}
		out = append(out, i)
	}
	walk(tt.ROOT)
	return out
}

//Terminals will return the indices of all tip nodes
func (tt *TimeTree) Terminals() (tips []int) {
	for i, n := range tt.NODES {
		if len(n.CHLD) == 0 {
			tips = append(tips, i)
		}
	}
	return
}

//SetRootDists will recompute the cumulative distance from the root for all
//nodes
func (tt *TimeTree) SetRootDists() {
	for _, i := range tt.PreorderArray() {
		n := tt.NODES[i]
		if n.PAR == -1 {
			n.ROOTDIST = 0
			continue
		}
		n.ROOTDIST = tt.NODES[n.PAR].ROOTDIST + n.LEN
	}
}

//SetNodeDates will store sampling dates on the nodes named in the mapping,
//reroot at the oldest dated terminal and refresh the root distances. Dates
//later than now are logged and skipped, leaving the node unconstrained.
func (tt *TimeTree) SetNodeDates(dates map[string]time.Time, now time.Time) {
	for _, n := range tt.NODES {
		d, ok := dates[n.NAME]
		if !ok {
			continue
		}
		if d.After(now) {
			slog.Warn("cannot set the date, it is later than the present day", "node", n.NAME)
			continue
		}
		n.RAWDATE = int(now.Sub(d).Hours() / 24)
		n.HASDATE = true
	}
	tt.RerootToOldest()
	tt.SetRootDists()
}

//RerootToOldest will reroot at the parent of the oldest dated terminal, so
//the most ancient sample sits directly below the root. Smarter rerooting is
//left to upstream tooling.
func (tt *TimeTree) RerootToOldest() {
	oldest := -1
	for _, i := range tt.Terminals() {
		n := tt.NODES[i]
		if !n.HASDATE {
			continue
		}
		if oldest == -1 || n.RAWDATE > tt.NODES[oldest].RAWDATE {
			oldest = i
		}
	}
	if oldest == -1 {
		return
	}
	newRoot := tt.NODES[oldest].PAR
	if newRoot == -1 {
		return
	}
	tt.rerootAt(newRoot)
	tt.NODES[tt.ROOT].HASDATE = false
	tt.SetRootDists()
}

//rerootAt flips the parent pointers along the path from target up to the
//current root, making target the new root
func (tt *TimeTree) rerootAt(target int) {
	if target == tt.ROOT {
		return
	}
	var path []int
	for cur := target; cur != -1; cur = tt.NODES[cur].PAR {
		path = append(path, cur)
	}
	edgeLens := make([]float64, len(path))
	for k, i := range path {
		edgeLens[k] = tt.NODES[i].LEN
	}
	for k := 0; k+1 < len(path); k++ {
		child, par := path[k], path[k+1]
		pn := tt.NODES[par]
		for j, c := range pn.CHLD {
			if c == child {
				pn.CHLD = append(pn.CHLD[:j], pn.CHLD[j+1:]...)
				break
			}
		}
	}
	for k := 0; k+1 < len(path); k++ {
		child, par := path[k], path[k+1]
		tt.NODES[child].CHLD = append(tt.NODES[child].CHLD, par)
		tt.NODES[par].PAR = child
		tt.NODES[par].LEN = edgeLens[k]
	}
	tt.NODES[target].PAR = -1
	tt.NODES[target].LEN = 0
	tt.ROOT = target
}

//NewickString will write the tree with branch lengths in newick format
func (tt *TimeTree) NewickString() string {
	return tt.newick(tt.ROOT) + ";"
}

func (tt *TimeTree) newick(i int) string {
	n := tt.NODES[i]
	if len(n.CHLD) == 0 {
		return n.NAME + ":" + strconv.FormatFloat(n.LEN, 'f', 6, 64)
	}
	parts := make([]string, 0, len(n.CHLD))
	for _, c := range n.CHLD {
		parts = append(parts, tt.newick(c))
	}
	s := "(" + strings.Join(parts, ",") + ")" + n.NAME
	if n.PAR != -1 {
		s += ":" + strconv.FormatFloat(n.LEN, 'f', 6, 64)
	}
	return s
}
