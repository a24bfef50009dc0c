package decomposition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/vedraiyani/skutil/pkg/errors"
)

// corrData builds a matrix whose first two columns are strongly correlated
// and whose last column is an unrelated pass-through candidate.
func corrData(n int) *mat.Dense {
	X := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		t := float64(i) * 0.31
		base := math.Sin(t) * 3.0
		X.Set(i, 0, base+0.1*math.Cos(t*7))
		X.Set(i, 1, 2*base+0.1*math.Sin(t*5))
		X.Set(i, 2, float64(i%7)) // categorical-ish, should pass through
	}
	return X
}

func TestSelectivePCAPassThrough(t *testing.T) {
	X := corrData(40)

	pca := NewSelectivePCA([]int{0, 1}, 1, false)
	out, err := pca.FitTransform(X)
	require.NoError(t, err)

	r, c := out.Dims()
	assert.Equal(t, 40, r)
	// 1 projected component + 1 untouched column.
	assert.Equal(t, 2, c)

	// The pass-through column keeps its values, appended after the components.
	for i := 0; i < r; i++ {
		assert.Equal(t, X.At(i, 2), out.At(i, 1), "row %d", i)
	}
}

func TestSelectivePCAExplainedVariance(t *testing.T) {
	X := corrData(60)

	pca := NewSelectivePCA([]int{0, 1}, 0, false)
	require.NoError(t, pca.Fit(X))

	vars := pca.ExplainedVariance()
	require.Len(t, vars, 2)
	assert.GreaterOrEqual(t, vars[0], vars[1], "components must be ordered by variance")

	// The sample variance of the first projected component matches the
	// leading explained variance.
	out, err := pca.Transform(X)
	require.NoError(t, err)
	dense := out.(*mat.Dense)
	projVar := stat.Variance(mat.Col(nil, 0, dense), nil)
	assert.InDelta(t, vars[0], projVar, 1e-9)
}

func TestSelectivePCAComponents(t *testing.T) {
	X := corrData(60)

	pca := NewSelectivePCA([]int{0, 1}, 0, false)
	assert.Nil(t, pca.Components(), "components must be nil before fitting")
	require.NoError(t, pca.Fit(X))

	vecs := pca.Components()
	require.NotNil(t, vecs)
	r, c := vecs.Dims()
	assert.Equal(t, 2, r, "one row per selected column")
	assert.Equal(t, 2, c, "one column per component")

	// Principal component vectors are unit length.
	for comp := 0; comp < c; comp++ {
		norm := 0.0
		for i := 0; i < r; i++ {
			norm += vecs.At(i, comp) * vecs.At(i, comp)
		}
		assert.InDelta(t, 1.0, norm, 1e-9, "component %d", comp)
	}
}

func TestSelectivePCAWhiten(t *testing.T) {
	X := corrData(60)

	pca := NewSelectivePCA([]int{0, 1}, 2, true)
	out, err := pca.FitTransform(X)
	require.NoError(t, err)

	dense := out.(*mat.Dense)
	for comp := 0; comp < 2; comp++ {
		v := stat.Variance(mat.Col(nil, comp, dense), nil)
		assert.InDelta(t, 1.0, v, 1e-9, "whitened component %d", comp)
	}
}

func TestSelectivePCANilColsSelectsAll(t *testing.T) {
	X := corrData(30)

	pca := NewSelectivePCA(nil, 0, false)
	out, err := pca.FitTransform(X)
	require.NoError(t, err)

	_, c := out.Dims()
	assert.Equal(t, 3, c, "all columns decomposed, none passed through")
}

func TestSelectivePCAValidation(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		pca := NewSelectivePCA(nil, 2, false)
		_, err := pca.Transform(corrData(10))
		var notFitted *errors.NotFittedError
		require.Error(t, err)
		assert.True(t, errors.As(err, &notFitted))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		pca := NewSelectivePCA([]int{0, 1}, 1, false)
		require.NoError(t, pca.Fit(corrData(20)))
		_, err := pca.Transform(mat.NewDense(5, 2, nil))
		var dimErr *errors.DimensionError
		require.Error(t, err)
		assert.True(t, errors.As(err, &dimErr))
	})

	t.Run("column index out of range", func(t *testing.T) {
		pca := NewSelectivePCA([]int{0, 5}, 1, false)
		err := pca.Fit(corrData(20))
		var valErr *errors.ValidationError
		require.Error(t, err)
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("single sample", func(t *testing.T) {
		pca := NewSelectivePCA(nil, 1, false)
		err := pca.Fit(mat.NewDense(1, 3, []float64{1, 2, 3}))
		require.Error(t, err)
	})
}

func TestSelectiveTruncatedSVDPassThrough(t *testing.T) {
	X := corrData(40)

	svd := NewSelectiveTruncatedSVD([]int{0, 1}, 1)
	out, err := svd.FitTransform(X)
	require.NoError(t, err)

	r, c := out.Dims()
	assert.Equal(t, 40, r)
	assert.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.Equal(t, X.At(i, 2), out.At(i, 1), "row %d", i)
	}

	values := svd.SingularValues()
	require.Len(t, values, 1)
	assert.Greater(t, values[0], 0.0)
}

func TestSelectiveTruncatedSVDRankOne(t *testing.T) {
	// Columns [a, 2a] form a rank-one block: a single component captures the
	// full Frobenius norm of the selection.
	n := 25
	X := mat.NewDense(n, 2, nil)
	frob := 0.0
	for i := 0; i < n; i++ {
		a := math.Sin(float64(i)*0.4) + 1.5
		X.Set(i, 0, a)
		X.Set(i, 1, 2*a)
		frob += a*a + 4*a*a
	}

	svd := NewSelectiveTruncatedSVD([]int{0, 1}, 1)
	out, err := svd.FitTransform(X)
	require.NoError(t, err)

	dense := out.(*mat.Dense)
	projNorm := 0.0
	for i := 0; i < n; i++ {
		v := dense.At(i, 0)
		projNorm += v * v
	}
	assert.InDelta(t, frob, projNorm, 1e-8)
}

func TestSelectiveTruncatedSVDValidation(t *testing.T) {
	t.Run("n_components must be below selection width", func(t *testing.T) {
		svd := NewSelectiveTruncatedSVD([]int{0, 1}, 2)
		err := svd.Fit(corrData(20))
		var valErr *errors.ValidationError
		require.Error(t, err)
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("not fitted", func(t *testing.T) {
		svd := NewSelectiveTruncatedSVD(nil, 1)
		_, err := svd.Transform(corrData(10))
		var notFitted *errors.NotFittedError
		require.Error(t, err)
		assert.True(t, errors.As(err, &notFitted))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		svd := NewSelectiveTruncatedSVD([]int{0, 1}, 1)
		require.NoError(t, svd.Fit(corrData(20)))
		_, err := svd.Transform(mat.NewDense(5, 2, nil))
		var dimErr *errors.DimensionError
		require.Error(t, err)
		assert.True(t, errors.As(err, &dimErr))
	})
}
