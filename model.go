package treetime

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//EvoModel is the narrow view of an evolutionary substitution model the time
//inference engine needs: a branch length scorer working on eigenspace
//profiles, plus the eigenvector data used to rotate raw profiles.
type EvoModel interface {
	BranchLogLike(prfL, prfR mat.Matrix, t float64) float64
	EigenVecs() *mat.Dense
	EigenVecsInv() *mat.Dense
	Alphabet() int
}

//ReversibleModel is a time-reversible substitution model defined by a
//symmetric rate matrix, held in eigendecomposed form. Fitting the rates is
//up to the caller; the engine only scores branch length hypotheses with it.
type ReversibleModel struct {
	ALPHA  int
	EIGVAL []float64
	V      *mat.Dense
	VINV   *mat.Dense
}

//NewReversibleModel will eigendecompose the supplied symmetric rate matrix
func NewReversibleModel(q *mat.Dense) (*ReversibleModel, error) {
	sym, err := SymDenseConvert(q)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	r, _ := q.Dims()
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("model: eigendecomposition of the rate matrix failed")
	}
	m := &ReversibleModel{ALPHA: r}
	m.EIGVAL = eig.Values(nil)
	var v mat.Dense
	eig.VectorsTo(&v)
	m.V = &v
	// eigenvectors of a symmetric matrix are orthonormal
	m.VINV = mat.DenseCopyOf(v.T())
	return m, nil
}

//NewJC will build the one-rate (Jukes-Cantor style) model on an alphabet of
//the given size with total substitution rate mu
func NewJC(alphabet int, mu float64) (*ReversibleModel, error) {
	if alphabet < 2 {
		return nil, fmt.Errorf("model: alphabet size %d is too small", alphabet)
	}
	a := float64(alphabet)
	q := mat.NewDense(alphabet, alphabet, nil)
	for i := 0; i < alphabet; i++ {
		for j := 0; j < alphabet; j++ {
			if i == j {
				q.Set(i, j, -mu)
			} else {
				q.Set(i, j, mu/(a-1))
			}
		}
	}
	return NewReversibleModel(q)
}

//Alphabet returns the number of states
func (m *ReversibleModel) Alphabet() int { return m.ALPHA }

//EigenVecs returns the eigenvector matrix of the rate matrix
func (m *ReversibleModel) EigenVecs() *mat.Dense { return m.V }

//EigenVecsInv returns the inverse eigenvector matrix
func (m *ReversibleModel) EigenVecsInv() *mat.Dense { return m.VINV }

//BranchLogLike will score a branch length hypothesis t between two nodes
//whose profiles have been rotated into the model eigenspace. Per site the
//transition probability contracts to a sum over states of
//prfL*prfR*exp(eigenvalue*t); the log-likelihood is the sum of the per site
//logs, floored to keep the logarithm finite.
func (m *ReversibleModel) BranchLogLike(prfL, prfR mat.Matrix, t float64) float64 {
	nsites, _ := prfL.Dims()
	ll := 0.
	for site := 0; site < nsites; site++ {
		p := 0.
		for s := 0; s < m.ALPHA; s++ {
			p += prfL.At(site, s) * prfR.At(site, s) * math.Exp(m.EIGVAL[s]*t)
		}
		if p < 1e-100 {
			p = 1e-100
		}
		ll += math.Log(p)
	}
	return ll
}

//SetRotatedProfiles will rotate every node's raw profile into the model
//eigenspace, storing the left and right forms consumed by the branch length
//likelihood builder
func (tt *TimeTree) SetRotatedProfiles(m EvoModel) error {
	for _, n := range tt.NODES {
		if n.PROFILE == nil {
			return fmt.Errorf("model: node %q has no sequence profile", n.NAME)
		}
		var r mat.Dense
		r.Mul(n.PROFILE, m.EigenVecs())
		n.PRFR = &r
		var l mat.Dense
		l.Mul(m.EigenVecsInv(), n.PROFILE.T())
		n.PRFL = mat.DenseCopyOf(l.T())
	}
	return nil
}

//OneHotProfile will build a site-by-state profile from a state sequence,
//smoothing each row by eps so no state carries exactly zero probability
func OneHotProfile(states []int, alphabet int, eps float64) *mat.Dense {
	p := mat.NewDense(len(states), alphabet, nil)
	for i, s := range states {
		for j := 0; j < alphabet; j++ {
			v := eps
			if j == s {
				v = 1 - float64(alphabet-1)*eps
			}
			p.Set(i, j, v)
		}
	}
	return p
}
