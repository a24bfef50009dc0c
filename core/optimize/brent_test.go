package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketFindsDownhillTriple(t *testing.T) {
	f := func(x float64) float64 { return (x - 3) * (x - 3) }

	ax, bx, cx, fa, fb, fc, err := Bracket(f, -2, 2)
	require.NoError(t, err)

	// The bracket may be ascending or descending, but the middle point must
	// straddle the others and carry the lowest function value.
	assert.True(t, (ax < bx && bx < cx) || (cx < bx && bx < ax),
		"bracket not ordered: %v %v %v", ax, bx, cx)
	assert.LessOrEqual(t, fb, fa)
	assert.LessOrEqual(t, fb, fc)
}

func TestBrentQuadratic(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		xa   float64
		xb   float64
		want float64
	}{
		{
			name: "minimum inside the hint interval",
			f:    func(x float64) float64 { return (x + 1) * (x + 1) },
			xa:   -2,
			xb:   2,
			want: -1,
		},
		{
			name: "minimum outside the hint interval",
			f:    func(x float64) float64 { return (x - 3) * (x - 3) },
			xa:   -2,
			xb:   2,
			want: 3,
		},
		{
			name: "scaled and shifted",
			f:    func(x float64) float64 { return 5*(x-0.25)*(x-0.25) + 7 },
			xa:   0,
			xb:   1,
			want: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xmin, fmin, err := Brent(tt.f, tt.xa, tt.xb)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, xmin, 1e-6)
			assert.InDelta(t, tt.f(tt.want), fmin, 1e-9)
		})
	}
}

func TestBrentCosine(t *testing.T) {
	// Downhill from (4, 5) the bracket walks back to the cosine minimum at pi.
	xmin, fmin, err := Brent(math.Cos, 4, 5)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, xmin, 1e-6)
	assert.InDelta(t, -1.0, fmin, 1e-9)
}

func TestBrentNonSymmetric(t *testing.T) {
	// Asymmetric objective exercises the parabolic-step rejection path.
	f := func(x float64) float64 { return math.Exp(x) - 2*x }
	xmin, _, err := Brent(f, -2, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, xmin, 1e-6)
}

func TestBrentNaNObjective(t *testing.T) {
	// A NaN-saturated objective must not error out of the minimizer itself;
	// the NaN function value is the caller's signal.
	f := func(x float64) float64 { return math.NaN() }
	_, fmin, err := Brent(f, -2, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(fmin))
}
