package treetime

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//InternalNodeSlice will return the indices of all internal nodes
func InternalNodeSlice(tt *TimeTree) (inNodes []int) {
	for i, n := range tt.NODES {
		if len(n.CHLD) > 0 {
			inNodes = append(inNodes, i)
		}
	}
	return
}

//TreeLength will return the total branch length of the tree
func TreeLength(tt *TimeTree) float64 {
	tot := 0.
	for _, n := range tt.NODES {
		if n.PAR == -1 {
			continue
		}
		tot += n.LEN
	}
	return tot
}

//AvgBranchLength will return the tree length divided by the number of
//branches of a fully bifurcating tree with the same tip count
func AvgBranchLength(tt *TimeTree) float64 {
	ntips := len(tt.Terminals())
	if ntips < 2 {
		return 0.
	}
	branches := float64((ntips - 1) * 2)
	return TreeLength(tt) / branches
}

//SymDenseConvert will convert a matrix of type *Dense to *SymDense
func SymDenseConvert(m *mat.Dense) (*mat.SymDense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("matrix is not square: %dx%d", r, c)
	}
	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			out.SetSym(i, j, m.At(i, j))
		}
	}
	return out, nil
}
