// Package sparse provides the row-oriented compressed sparse row (CSR) dataset
// the booster reads its training rows from.
package sparse

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// Row is one sparse row with feature indices in strictly ascending order.
type Row struct {
	Features []int32
	Values   []float32
}

// Len returns the number of stored features.
func (r Row) Len() int {
	return len(r.Features)
}

// Value returns the value of feature, or 0 when the row does not store it.
func (r Row) Value(feature int) float32 {
	i := sort.Search(len(r.Features), func(i int) bool { return int(r.Features[i]) >= feature })
	if i < len(r.Features) && int(r.Features[i]) == feature {
		return r.Values[i]
	}
	return 0
}

// Matrix is an immutable CSR matrix.
type Matrix struct {
	indptr     []int
	features   []int32
	values     []float32
	numFeature int
}

// NumRows returns the number of rows.
func (m *Matrix) NumRows() int {
	return len(m.indptr) - 1
}

// NumFeature returns the maximum feature index plus one.
func (m *Matrix) NumFeature() int {
	return m.numFeature
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.values)
}

// Row returns row id. The returned slices alias the matrix and must not be modified.
func (m *Matrix) Row(id int) Row {
	lo, hi := m.indptr[id], m.indptr[id+1]
	return Row{Features: m.features[lo:hi:hi], Values: m.values[lo:hi:hi]}
}

// Builder accumulates rows into a Matrix.
type Builder struct {
	indptr     []int
	features   []int32
	values     []float32
	numFeature int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{indptr: []int{0}}
}

// AppendRow adds a row with its features sorted. A row is rejected when an index
// repeats or is negative, or when a value is not finite.
func (b *Builder) AppendRow(features []int32, values []float32) error {
	if len(features) != len(values) {
		return errors.NewDimensionError("sparse.AppendRow", len(features), len(values), 1)
	}
	row := b.NumRows()
	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, c int) bool { return features[idx[a]] < features[idx[c]] })

	for k, i := range idx {
		f := features[i]
		if f < 0 {
			b.rollback()
			return errors.NewDataInconsistencyError("sparse.AppendRow", row, int(f), "negative feature index")
		}
		if k > 0 && features[idx[k-1]] == f {
			b.rollback()
			return errors.NewDataInconsistencyError("sparse.AppendRow", row, int(f), "duplicate feature in row")
		}
		if v := float64(values[i]); math.IsNaN(v) || math.IsInf(v, 0) {
			b.rollback()
			return errors.NewDataInconsistencyError("sparse.AppendRow", row, int(f), "non-finite value")
		}
		b.features = append(b.features, f)
		b.values = append(b.values, values[i])
	}
	if n := len(idx); n > 0 {
		if last := int(features[idx[n-1]]) + 1; last > b.numFeature {
			b.numFeature = last
		}
	}
	b.indptr = append(b.indptr, len(b.features))
	return nil
}

// rollback discards the entries of a partially appended row.
func (b *Builder) rollback() {
	end := b.indptr[len(b.indptr)-1]
	b.features = b.features[:end]
	b.values = b.values[:end]
}

// NumRows returns the number of rows appended so far.
func (b *Builder) NumRows() int {
	return len(b.indptr) - 1
}

// Build returns the matrix. numFeature widens the feature space beyond the
// largest index seen; pass 0 to keep it.
func (b *Builder) Build(numFeature int) *Matrix {
	if numFeature < b.numFeature {
		numFeature = b.numFeature
	}
	return &Matrix{
		indptr:     b.indptr,
		features:   b.features,
		values:     b.values,
		numFeature: numFeature,
	}
}

// FromDense converts a dense matrix, skipping exact zeros.
func FromDense(X mat.Matrix) (*Matrix, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.ErrEmptyData
	}
	b := NewBuilder()
	features := make([]int32, 0, cols)
	values := make([]float32, 0, cols)
	for i := 0; i < rows; i++ {
		features, values = features[:0], values[:0]
		for j := 0; j < cols; j++ {
			if v := X.At(i, j); v != 0 {
				features = append(features, int32(j))
				values = append(values, float32(v))
			}
		}
		if err := b.AppendRow(features, values); err != nil {
			return nil, err
		}
	}
	return b.Build(cols), nil
}

// ToDense expands m into a dense rows×NumFeature matrix.
func (m *Matrix) ToDense() *mat.Dense {
	if m.NumRows() == 0 {
		return nil
	}
	d := mat.NewDense(m.NumRows(), max(m.numFeature, 1), nil)
	for i := 0; i < m.NumRows(); i++ {
		r := m.Row(i)
		for k, f := range r.Features {
			d.Set(i, int(f), float64(r.Values[k]))
		}
	}
	return d
}
