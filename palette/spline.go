package palette

import (
	"errors"
	"math"
)

// spline is a cubic spline with not-a-knot end conditions: the third derivative is continuous
// at the second and the second to last knot. With 4 knots it is the single cubic through them.
type spline struct {
	xs []float64
	ys []float64
	m  []float64 // second derivative at each knot
}

func newSpline(xs []float64, ys []float64) (spline, error) {
	n := len(xs)
	if n < 4 || len(ys) != n {
		return spline{}, errors.New("not-a-knot spline needs at least 4 points")
	}

	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
	}

	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
	}
	b := make([]float64, n)

	a[0][0], a[0][1], a[0][2] = -h[1], h[0]+h[1], -h[0]
	for i := 1; i < n-1; i++ {
		a[i][i-1] = h[i-1]
		a[i][i] = 2 * (h[i-1] + h[i])
		a[i][i+1] = h[i]
		b[i] = 6 * ((ys[i+1]-ys[i])/h[i] - (ys[i]-ys[i-1])/h[i-1])
	}
	a[n-1][n-3], a[n-1][n-2], a[n-1][n-1] = -h[n-2], h[n-3]+h[n-2], -h[n-3]

	m, err := solve(a, b)
	if err != nil {
		return spline{}, err
	}
	return spline{xs: xs, ys: ys, m: m}, nil
}

func (s spline) at(t float64) float64 {
	k, _ := segment(s.xs, t)
	h := s.xs[k+1] - s.xs[k]
	left := s.xs[k+1] - t
	right := t - s.xs[k]
	return s.m[k]*left*left*left/(6*h) +
		s.m[k+1]*right*right*right/(6*h) +
		(s.ys[k]/h-s.m[k]*h/6)*left +
		(s.ys[k+1]/h-s.m[k+1]*h/6)*right
}

// solve runs gaussian elimination with partial pivoting on a small dense system.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular spline system")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
