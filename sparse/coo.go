// Package sparse provides coordinate (COO) and compressed-row (CSR) sparse
// matrix formats for nonnegative count data, interoperable with gonum's mat
// package. COO is the interchange format: it carries parallel (row, column,
// value) arrays and converts losslessly to CSR, which is the compute format
// used for row slicing and matrix products.
package sparse

import (
	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/pkg/errors"
)

// COO is a sparse matrix in coordinate (triplet) format.
// The three parallel slices hold one nonzero entry each; entries are kept in
// insertion order and no (row, col) pair is expected to repeat.
type COO struct {
	rows, cols int
	rowIdx     []int
	colIdx     []int
	data       []float64
}

// NewCOO creates a COO matrix from parallel triplet slices. The slices are
// copied. An error is returned when the slices differ in length or any index
// falls outside the given shape.
func NewCOO(rows, cols int, rowIdx, colIdx []int, data []float64) (*COO, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("NewCOO", "matrix shape must be positive")
	}
	if len(rowIdx) != len(data) {
		return nil, errors.NewDimensionError("NewCOO", len(data), len(rowIdx), 0)
	}
	if len(colIdx) != len(data) {
		return nil, errors.NewDimensionError("NewCOO", len(data), len(colIdx), 1)
	}
	for i := range data {
		if rowIdx[i] < 0 || rowIdx[i] >= rows {
			return nil, errors.NewValidationError("rowIdx", "row index out of range", rowIdx[i])
		}
		if colIdx[i] < 0 || colIdx[i] >= cols {
			return nil, errors.NewValidationError("colIdx", "column index out of range", colIdx[i])
		}
	}
	c := &COO{
		rows:   rows,
		cols:   cols,
		rowIdx: append([]int(nil), rowIdx...),
		colIdx: append([]int(nil), colIdx...),
		data:   append([]float64(nil), data...),
	}
	return c, nil
}

// FromMatrix converts any matrix into COO form by exporting its nonzero
// entries as (row, column, value) triplets. Indices are transferred as
// integers without change; values are narrowed to single precision to match
// the storage width used for transferred count data. The source matrix is
// never mutated.
//
// Sparse inputs take a fast path that walks stored entries only; dense inputs
// are scanned in row-major order.
func FromMatrix(m mat.Matrix) (*COO, error) {
	if m == nil {
		return nil, errors.NewValueError("FromMatrix", "nil matrix")
	}
	switch s := m.(type) {
	case *COO:
		return NewCOO(s.rows, s.cols, s.rowIdx, s.colIdx, narrow(s.data))
	case *CSR:
		coo := s.ToCOO()
		coo.data = narrow(coo.data)
		return coo, nil
	}

	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError("FromMatrix", "empty matrix")
	}
	var (
		ri, ci []int
		vals   []float64
	)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if v == 0 {
				continue
			}
			ri = append(ri, i)
			ci = append(ci, j)
			vals = append(vals, v)
		}
	}
	return NewCOO(rows, cols, ri, ci, narrow(vals))
}

// narrow rounds values through single precision, the storage width of
// transferred count data. A warning is raised once per call when rounding
// changes any value.
func narrow(data []float64) []float64 {
	lossy := false
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(float32(v))
		if out[i] != v {
			lossy = true
		}
	}
	if lossy {
		errors.Warn(errors.NewDataConversionWarning("float64", "float32",
			"sparse interchange stores single-precision values"))
	}
	return out
}

// Dims returns the matrix dimensions.
func (c *COO) Dims() (r, cl int) { return c.rows, c.cols }

// At returns the value at (i, j). Lookup scans the stored triplets, so COO is
// an interchange format rather than a compute format; convert to CSR for
// repeated element access.
func (c *COO) At(i, j int) float64 {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic("sparse: index out of range")
	}
	var v float64
	for k, r := range c.rowIdx {
		if r == i && c.colIdx[k] == j {
			v += c.data[k]
		}
	}
	return v
}

// T returns the transpose of the matrix.
func (c *COO) T() mat.Matrix { return mat.Transpose{Matrix: c} }

// NNZ returns the number of stored entries.
func (c *COO) NNZ() int { return len(c.data) }

// Triplets returns copies of the (row, column, value) arrays.
func (c *COO) Triplets() (rowIdx, colIdx []int, data []float64) {
	return append([]int(nil), c.rowIdx...),
		append([]int(nil), c.colIdx...),
		append([]float64(nil), c.data...)
}

// ToCSR converts the matrix to compressed-row form. Entries within a row are
// ordered by column and duplicate (row, col) pairs are summed, so the result
// is canonical regardless of triplet order.
func (c *COO) ToCSR() *CSR {
	nnz := len(c.data)
	rowPtr := make([]int, c.rows+1)
	for _, r := range c.rowIdx {
		rowPtr[r+1]++
	}
	for i := 0; i < c.rows; i++ {
		rowPtr[i+1] += rowPtr[i]
	}

	colIdx := make([]int, nnz)
	data := make([]float64, nnz)
	next := append([]int(nil), rowPtr[:c.rows]...)
	for k := 0; k < nnz; k++ {
		p := next[c.rowIdx[k]]
		colIdx[p] = c.colIdx[k]
		data[p] = c.data[k]
		next[c.rowIdx[k]]++
	}

	csr := &CSR{rows: c.rows, cols: c.cols, rowPtr: rowPtr, colIdx: colIdx, data: data}
	csr.canonicalize()
	return csr
}

// ToDense materializes the matrix as a gonum dense matrix.
func (c *COO) ToDense() *mat.Dense {
	d := mat.NewDense(c.rows, c.cols, nil)
	for k, r := range c.rowIdx {
		d.Set(r, c.colIdx[k], d.At(r, c.colIdx[k])+c.data[k])
	}
	return d
}
