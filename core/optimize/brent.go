// Package optimize provides derivative-free scalar minimization used by the
// per-feature maximum-likelihood estimators.
//
// The implementation follows SciPy's optimize.brent: a downhill bracket search
// started from a hint interval, followed by Brent's method combining parabolic
// interpolation with golden-section fallback steps. gonum's optimize package
// targets multivariate problems and offers no bracketed scalar minimizer, so
// this one is self-contained.
package optimize

import (
	"math"

	"github.com/vedraiyani/skutil/pkg/errors"
)

const (
	gold         = 1.618034  // golden ratio for downhill bracket growth
	cgold        = 0.3819660 // golden-section step factor
	verySmallNum = 1e-21
	minTol       = 1.0e-11

	// BracketGrowLimit caps a single parabolic-extrapolation step during
	// bracketing, in units of the current interval width.
	BracketGrowLimit = 110.0

	// DefaultTol is the relative convergence tolerance of Brent's method.
	DefaultTol = 1.48e-8

	bracketMaxIter = 1000
	brentMaxIter   = 500
)

// Bracket searches downhill from the interval (xa, xb) for three points
// bracketing a local minimum of f, so that xa < xb < xc (or xc < xb < xa)
// and f(xb) <= min(f(xa), f(xc)). The initial points are only a starting
// hint; the result may lie well outside of them.
func Bracket(f func(float64) float64, xa, xb float64) (ax, bx, cx, fa, fb, fc float64, err error) {
	fa = f(xa)
	fb = f(xb)
	if fa < fb {
		xa, xb = xb, xa
		fa, fb = fb, fa
	}
	xc := xb + gold*(xb-xa)
	fc = f(xc)

	iter := 0
	for fc < fb {
		tmp1 := (xb - xa) * (fb - fc)
		tmp2 := (xb - xc) * (fb - fa)
		val := tmp2 - tmp1
		var denom float64
		if math.Abs(val) < verySmallNum {
			denom = 2.0 * verySmallNum
		} else {
			denom = 2.0 * val
		}
		w := xb - ((xb-xc)*tmp2-(xb-xa)*tmp1)/denom
		wlim := xb + BracketGrowLimit*(xc-xb)

		if iter > bracketMaxIter {
			return 0, 0, 0, 0, 0, 0, errors.Wrapf(errors.ErrBracketFailed,
				"no downhill bracket after %d iterations", bracketMaxIter)
		}
		iter++

		var fw float64
		switch {
		case (w-xc)*(xb-w) > 0.0:
			// Parabolic minimum lies between xb and xc.
			fw = f(w)
			if fw < fc {
				ax, bx, cx = xb, w, xc
				fa, fb = fb, fw
				return ax, bx, cx, fa, fb, fc, nil
			} else if fw > fb {
				ax, bx, cx = xa, xb, w
				fc = fw
				return ax, bx, cx, fa, fb, fc, nil
			}
			w = xc + gold*(xc-xb)
			fw = f(w)
		case (w-wlim)*(wlim-xc) >= 0.0:
			// Limit the step to the maximum allowed growth.
			w = wlim
			fw = f(w)
		case (w-wlim)*(xc-w) > 0.0:
			fw = f(w)
			if fw < fc {
				xb, xc = xc, w
				w = xc + gold*(xc-xb)
				fb, fc = fc, fw
				fw = f(w)
			}
		default:
			w = xc + gold*(xc-xb)
			fw = f(w)
		}
		xa, xb, xc = xb, xc, w
		fa, fb, fc = fb, fc, fw
	}
	return xa, xb, xc, fa, fb, fc, nil
}

// Brent minimizes f by Brent's method, starting from the bracket hint
// (xa, xb). It returns the abscissa of the minimum and the function value
// there. The minimizer is free to evaluate f outside the hint interval.
//
// A NaN-valued objective is tolerated: IEEE comparisons with NaN are false,
// so NaN candidates are never accepted as improvements. If the objective is
// NaN everywhere the returned fmin is NaN; callers decide how to treat that.
func Brent(f func(float64) float64, xa, xb float64) (xmin, fmin float64, err error) {
	ax, bx, cx, _, fb, _, err := Bracket(f, xa, xb)
	if err != nil {
		return 0, 0, err
	}

	x, w, v := bx, bx, bx
	fx, fw, fv := fb, fb, fb
	var a, b float64
	if ax < cx {
		a, b = ax, cx
	} else {
		a, b = cx, ax
	}

	deltax := 0.0
	rat := 0.0
	converged := false
	for iter := 0; iter < brentMaxIter; iter++ {
		tol1 := DefaultTol*math.Abs(x) + minTol
		tol2 := 2.0 * tol1
		xmid := 0.5 * (a + b)
		if math.Abs(x-xmid) < tol2-0.5*(b-a) {
			converged = true
			break
		}

		if math.Abs(deltax) <= tol1 {
			// Golden-section step.
			if x >= xmid {
				deltax = a - x
			} else {
				deltax = b - x
			}
			rat = cgold * deltax
		} else {
			// Try a parabolic step through x, w, v.
			tmp1 := (x - w) * (fx - fv)
			tmp2 := (x - v) * (fx - fw)
			p := (x-v)*tmp2 - (x-w)*tmp1
			tmp2 = 2.0 * (tmp2 - tmp1)
			if tmp2 > 0.0 {
				p = -p
			}
			tmp2 = math.Abs(tmp2)
			dxTemp := deltax
			deltax = rat
			if p > tmp2*(a-x) && p < tmp2*(b-x) && math.Abs(p) < math.Abs(0.5*tmp2*dxTemp) {
				// Parabolic step accepted.
				rat = p / tmp2
				u := x + rat
				if (u-a) < tol2 || (b-u) < tol2 {
					if xmid-x >= 0 {
						rat = tol1
					} else {
						rat = -tol1
					}
				}
			} else {
				// Reject and fall back to golden section.
				if x >= xmid {
					deltax = a - x
				} else {
					deltax = b - x
				}
				rat = cgold * deltax
			}
		}

		var u float64
		if math.Abs(rat) < tol1 {
			// Never step less than tol1 away from x.
			if rat >= 0 {
				u = x + tol1
			} else {
				u = x - tol1
			}
		} else {
			u = x + rat
		}

		fu := f(u)
		if fu > fx {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, w = w, u
				fv, fw = fw, fu
			} else if fu <= fv || v == x || v == w {
				v = u
				fv = fu
			}
		} else {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, w, x = w, x, u
			fv, fw, fx = fw, fx, fu
		}
	}
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("brent", brentMaxIter, ""))
	}

	return x, fx, nil
}
