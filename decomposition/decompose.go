// Package decomposition provides column-selective dimensionality reduction
// transformers.
//
// Unlike a plain PCA or SVD, the selective variants apply the decomposition
// only to a chosen subset of columns. This is useful for data that mixes
// continuous measurements with dummied categorical features that should pass
// through untouched. The decomposition itself is delegated to gonum
// (stat.PC and mat.SVD); this package only adds the estimator contract and
// the column bookkeeping.
package decomposition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/vedraiyani/skutil/core/model"
	"github.com/vedraiyani/skutil/pkg/errors"
)

// selectColumns copies the columns listed in cols out of X into a new dense
// matrix, preserving their order. A nil cols selects every column.
func selectColumns(X mat.Matrix, cols []int) (*mat.Dense, []int, error) {
	r, c := X.Dims()
	if cols == nil {
		cols = make([]int, c)
		for j := range cols {
			cols[j] = j
		}
	}
	for _, j := range cols {
		if j < 0 || j >= c {
			return nil, nil, errors.NewValidationError("cols",
				fmt.Sprintf("column index out of range [0, %d)", c), j)
		}
	}
	sub := mat.NewDense(r, len(cols), nil)
	for sj, j := range cols {
		for i := 0; i < r; i++ {
			sub.Set(i, sj, X.At(i, j))
		}
	}
	return sub, cols, nil
}

// passThroughColumns returns the column indices of X that are not in cols,
// in their original order.
func passThroughColumns(nFeatures int, cols []int) []int {
	selected := make(map[int]bool, len(cols))
	for _, j := range cols {
		selected[j] = true
	}
	var other []int
	for j := 0; j < nFeatures; j++ {
		if !selected[j] {
			other = append(other, j)
		}
	}
	return other
}

// assemble builds the output matrix: projected components first, then the
// untouched columns of X in their original order.
func assemble(projected *mat.Dense, X mat.Matrix, other []int) *mat.Dense {
	r, k := projected.Dims()
	out := mat.NewDense(r, k+len(other), nil)
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			out.Set(i, j, projected.At(i, j))
		}
		for oj, j := range other {
			out.Set(i, k+oj, X.At(i, j))
		}
	}
	return out
}

// SelectivePCA applies principal component analysis to a selected subset of
// columns only. Columns outside the selection pass through unchanged and are
// appended after the projected components.
type SelectivePCA struct {
	model.BaseEstimator

	// Cols holds the indices of the columns to decompose. nil selects all.
	Cols []int

	// NComponents is the number of components to keep. Zero keeps every
	// component the decomposition produces.
	NComponents int

	// Whiten scales each projected component to unit variance.
	Whiten bool

	nFeatures int
	cols      []int
	other     []int
	means     []float64
	vectors   *mat.Dense
	vars      []float64
	k         int
}

var (
	_ model.Transformer     = (*SelectivePCA)(nil)
	_ model.ParameterGetter = (*SelectivePCA)(nil)
	_ model.Transformer     = (*SelectiveTruncatedSVD)(nil)
	_ model.ParameterGetter = (*SelectiveTruncatedSVD)(nil)
)

// NewSelectivePCA creates a SelectivePCA over the given column indices.
// A nil cols applies the decomposition to every column.
func NewSelectivePCA(cols []int, nComponents int, whiten bool) *SelectivePCA {
	return &SelectivePCA{Cols: cols, NComponents: nComponents, Whiten: whiten}
}

// Fit computes the principal components of the selected columns.
func (p *SelectivePCA) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "SelectivePCA.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SelectivePCA.Fit", "empty data", errors.ErrEmptyData)
	}
	if r < 2 {
		return errors.NewValidationError("n_samples", "should be at least two", r)
	}

	sub, cols, err := selectColumns(X, p.Cols)
	if err != nil {
		return err
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(sub, nil); !ok {
		return errors.NewModelError("SelectivePCA.Fit", "principal component analysis failed", nil)
	}

	_, sc := sub.Dims()
	means := make([]float64, sc)
	for j := 0; j < sc; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, sub), nil)
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	k := p.NComponents
	if k <= 0 || k > len(vars) {
		k = len(vars)
	}

	p.nFeatures = c
	p.cols = cols
	p.other = passThroughColumns(c, cols)
	p.means = means
	p.vectors = &vecs
	p.vars = vars
	p.k = k
	p.SetFitted()
	return nil
}

// Transform projects the selected columns onto the fitted components and
// appends the pass-through columns.
func (p *SelectivePCA) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("SelectivePCA", "Transform")
	}
	r, c := X.Dims()
	if c != p.nFeatures {
		return nil, errors.NewDimensionError("SelectivePCA.Transform", p.nFeatures, c, 1)
	}

	projected := mat.NewDense(r, p.k, nil)
	for i := 0; i < r; i++ {
		for comp := 0; comp < p.k; comp++ {
			sum := 0.0
			for sj, j := range p.cols {
				sum += (X.At(i, j) - p.means[sj]) * p.vectors.At(sj, comp)
			}
			if p.Whiten && p.vars[comp] > 0 {
				sum /= math.Sqrt(p.vars[comp])
			}
			projected.Set(i, comp, sum)
		}
	}

	return assemble(projected, X, p.other), nil
}

// FitTransform fits the decomposition and transforms the same data.
func (p *SelectivePCA) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// Components returns the fitted principal component vectors, one column per
// component, or nil if the estimator is not fitted.
func (p *SelectivePCA) Components() *mat.Dense {
	if !p.IsFitted() {
		return nil
	}
	return p.vectors
}

// ExplainedVariance returns the variance carried by each component.
func (p *SelectivePCA) ExplainedVariance() []float64 {
	if !p.IsFitted() {
		return nil
	}
	out := make([]float64, len(p.vars))
	copy(out, p.vars)
	return out
}

// GetParams returns the estimator's hyperparameters.
func (p *SelectivePCA) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"cols":         p.Cols,
		"n_components": p.NComponents,
		"whiten":       p.Whiten,
	}
}

// SelectiveTruncatedSVD applies a truncated singular value decomposition
// (latent semantic analysis) to a selected subset of columns. Unlike PCA the
// data is not centered before decomposition.
type SelectiveTruncatedSVD struct {
	model.BaseEstimator

	// Cols holds the indices of the columns to decompose. nil selects all.
	Cols []int

	// NComponents is the desired output dimensionality. It must be strictly
	// less than the number of selected columns. The default of 2 is useful
	// for visualisation.
	NComponents int

	nFeatures int
	cols      []int
	other     []int
	basis     *mat.Dense
	singular  []float64
}

// NewSelectiveTruncatedSVD creates a SelectiveTruncatedSVD over the given
// column indices. A nil cols applies the decomposition to every column.
func NewSelectiveTruncatedSVD(cols []int, nComponents int) *SelectiveTruncatedSVD {
	if nComponents <= 0 {
		nComponents = 2
	}
	return &SelectiveTruncatedSVD{Cols: cols, NComponents: nComponents}
}

// Fit factorizes the selected columns and keeps the top NComponents right
// singular vectors as the projection basis.
func (s *SelectiveTruncatedSVD) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "SelectiveTruncatedSVD.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SelectiveTruncatedSVD.Fit", "empty data", errors.ErrEmptyData)
	}

	sub, cols, err := selectColumns(X, s.Cols)
	if err != nil {
		return err
	}
	if s.NComponents >= len(cols) {
		return errors.NewValidationError("n_components",
			"must be strictly less than the number of selected columns", s.NComponents)
	}

	var svd mat.SVD
	if ok := svd.Factorize(sub, mat.SVDThin); !ok {
		return errors.NewModelError("SelectiveTruncatedSVD.Fit", "SVD factorization failed", nil)
	}

	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)

	// Keep the leading NComponents right singular vectors.
	basis := mat.DenseCopyOf(v.Slice(0, len(cols), 0, s.NComponents))

	s.nFeatures = c
	s.cols = cols
	s.other = passThroughColumns(c, cols)
	s.basis = basis
	s.singular = values[:s.NComponents]
	s.SetFitted()
	return nil
}

// Transform projects the selected columns into the fitted concept space and
// appends the pass-through columns.
func (s *SelectiveTruncatedSVD) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SelectiveTruncatedSVD", "Transform")
	}
	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("SelectiveTruncatedSVD.Transform", s.nFeatures, c, 1)
	}

	sub := mat.NewDense(r, len(s.cols), nil)
	for sj, j := range s.cols {
		for i := 0; i < r; i++ {
			sub.Set(i, sj, X.At(i, j))
		}
	}

	var projected mat.Dense
	projected.Mul(sub, s.basis)

	return assemble(&projected, X, s.other), nil
}

// FitTransform fits the decomposition and transforms the same data.
func (s *SelectiveTruncatedSVD) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Components returns the fitted projection basis, one column per component,
// or nil if the estimator is not fitted.
func (s *SelectiveTruncatedSVD) Components() *mat.Dense {
	if !s.IsFitted() {
		return nil
	}
	return s.basis
}

// SingularValues returns the singular values of the kept components.
func (s *SelectiveTruncatedSVD) SingularValues() []float64 {
	if !s.IsFitted() {
		return nil
	}
	out := make([]float64, len(s.singular))
	copy(out, s.singular)
	return out
}

// GetParams returns the estimator's hyperparameters.
func (s *SelectiveTruncatedSVD) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"cols":         s.Cols,
		"n_components": s.NComponents,
	}
}
