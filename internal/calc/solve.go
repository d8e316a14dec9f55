// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calc

import (
	"errors"
	"math"
)

var (
	// ErrNoRoot is returned when a root is not bracketed or not found.
	ErrNoRoot = errors.New("no root in interval")

	// ErrStepSize is returned when the integrator cannot meet its tolerance.
	ErrStepSize = errors.New("step size underflow")
)

const (
	brentXTol    = 2e-12
	brentRTol    = 4 * 2.220446049250313e-16
	brentMaxIter = 100
)

// brent finds a root of f in [a, b]; f(a) and f(b) must differ in sign.
func brent(f func(float64) float64, a, b float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return math.NaN(), ErrNoRoot
	}

	c, fc := a, fa
	d := b - a
	e := d
	for range brentMaxIter {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol := brentXTol + brentRTol*math.Abs(b)
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			// Inverse quadratic interpolation, or secant when a == c.
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*m*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d, e = m, m
			}
		} else {
			d, e = m, m
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if m > 0 {
			b += tol
		} else {
			b -= tol
		}
		fb = f(b)
	}
	return b, ErrNoRoot
}

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpB = [7]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	dpE = [7]float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40}
)

const (
	odeRTol     = 1e-3
	odeATol     = 1e-6
	odeMaxSteps = 100000
	odeSafety   = 0.9
	odeMinScale = 0.2
	odeMaxScale = 10
)

// Point is one accepted integration step.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// dormandPrince integrates the scalar ODE y' = f(x, y) from x0 to x1 with
// an adaptive embedded 5(4) Runge-Kutta method and returns the accepted
// steps, the first being (x0, y0).
func dormandPrince(f func(x, y float64) (float64, error), x0, x1, y0 float64) ([]Point, error) {
	x, y := x0, y0
	path := []Point{{X: x, Y: y}}
	if x1 <= x0 {
		return path, nil
	}

	k1, err := f(x, y)
	if err != nil {
		return nil, err
	}
	h, err := initialStep(f, x, y, k1, x1-x0)
	if err != nil {
		return nil, err
	}

	var k [7]float64
	for steps := 0; x < x1; steps++ {
		if steps >= odeMaxSteps {
			return nil, ErrStepSize
		}
		last := x+h >= x1
		if last {
			h = x1 - x
		}
		k[0] = k1
		for i := 1; i < 7; i++ {
			yi := y
			for j := 0; j < i; j++ {
				yi += h * dpA[i][j] * k[j]
			}
			if k[i], err = f(x+dpC[i]*h, yi); err != nil {
				return nil, err
			}
		}

		var yNew, errEst float64
		yNew = y
		for j := range 7 {
			yNew += h * dpB[j] * k[j]
			errEst += h * dpE[j] * k[j]
		}
		scale := odeATol + math.Max(math.Abs(y), math.Abs(yNew))*odeRTol
		norm := math.Abs(errEst) / scale
		if math.IsNaN(norm) {
			return nil, ErrStepSize
		}

		if norm < 1 {
			factor := float64(odeMaxScale)
			if norm > 0 {
				factor = math.Min(odeMaxScale, odeSafety*math.Pow(norm, -0.2))
			}
			if last {
				x = x1
			} else {
				x += h
			}
			y = yNew
			k1 = k[6]
			path = append(path, Point{X: x, Y: y})
			h *= factor
			continue
		}
		h *= math.Max(odeMinScale, odeSafety*math.Pow(norm, -0.2))
		if h < 1e-15*math.Abs(x1-x0) {
			return nil, ErrStepSize
		}
	}
	return path, nil
}

// initialStep picks the first step from the local scale of y and f.
func initialStep(f func(x, y float64) (float64, error), x, y, f0, span float64) (float64, error) {
	sc := odeATol + math.Abs(y)*odeRTol
	d0 := math.Abs(y) / sc
	d1 := math.Abs(f0) / sc
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)
	f1, err := f(x+h0, y+h0*f0)
	if err != nil {
		return 0, err
	}
	d2 := math.Abs(f1-f0) / sc / h0
	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 0.2)
	}
	return math.Min(math.Min(100*h0, h1), span), nil
}
