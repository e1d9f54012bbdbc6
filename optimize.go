package treetime

import "math"

//OptResult reports the outcome of a bounded scalar minimization. OK is false
//when no optimum could be located; the caller decides what to substitute.
type OptResult struct {
	X  float64
	OK bool
}

//MinimizeScalarBounded will locate a local minimum of f on [lo, hi] by
//golden section search. Like any bracketing method it assumes f is roughly
//unimodal on the interval; on a multimodal curve it settles into one basin.
func MinimizeScalarBounded(f func(float64) float64, lo, hi float64) OptResult {
	if math.IsNaN(lo) || math.IsNaN(hi) || hi <= lo {
		return OptResult{}
	}
	const invphi = 0.6180339887498949
	a, b := lo, hi
	c := b - invphi*(b-a)
	d := a + invphi*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < 200; i++ {
		if b-a <= 1e-9*(math.Abs(a)+math.Abs(b)+1) {
			break
		}
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invphi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invphi*(b-a)
			fd = f(d)
		}
	}
	x := 0.5 * (a + b)
	fx := f(x)
	if math.IsNaN(fx) || math.IsInf(fx, 0) {
		return OptResult{}
	}
	return OptResult{X: x, OK: true}
}
