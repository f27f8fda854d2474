package sparse

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/pkg/errors"
)

// CSR is a sparse matrix in compressed-row format. rowPtr has rows+1 entries;
// the stored entries of row i live in colIdx[rowPtr[i]:rowPtr[i+1]] and
// data[rowPtr[i]:rowPtr[i+1]], sorted by column with no duplicates.
type CSR struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	data       []float64
}

// NewCSR creates a CSR matrix from raw compressed-row arrays. The slices are
// retained, not copied. The row pointer must be monotone with rowPtr[0] == 0
// and rowPtr[rows] == len(data).
func NewCSR(rows, cols int, rowPtr, colIdx []int, data []float64) (*CSR, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("NewCSR", "matrix shape must be positive")
	}
	if len(rowPtr) != rows+1 {
		return nil, errors.NewDimensionError("NewCSR", rows+1, len(rowPtr), 0)
	}
	if rowPtr[0] != 0 || rowPtr[rows] != len(data) || len(colIdx) != len(data) {
		return nil, errors.NewValueError("NewCSR", "inconsistent row pointer and entry arrays")
	}
	for i := 0; i < rows; i++ {
		if rowPtr[i+1] < rowPtr[i] {
			return nil, errors.NewValueError("NewCSR", "row pointer must be non-decreasing")
		}
	}
	for _, j := range colIdx {
		if j < 0 || j >= cols {
			return nil, errors.NewValidationError("colIdx", "column index out of range", j)
		}
	}
	return &CSR{rows: rows, cols: cols, rowPtr: rowPtr, colIdx: colIdx, data: data}, nil
}

// canonicalize sorts each row's entries by column and sums duplicates in
// place.
func (c *CSR) canonicalize() {
	outPtr := make([]int, len(c.rowPtr))
	out := 0
	for i := 0; i < c.rows; i++ {
		start, end := c.rowPtr[i], c.rowPtr[i+1]
		seg := rowSegment{cols: c.colIdx[start:end], vals: c.data[start:end]}
		sort.Sort(seg)

		rowStart := out
		for k := start; k < end; k++ {
			if out > rowStart && c.colIdx[out-1] == c.colIdx[k] {
				c.data[out-1] += c.data[k]
				continue
			}
			c.colIdx[out] = c.colIdx[k]
			c.data[out] = c.data[k]
			out++
		}
		outPtr[i+1] = out
	}
	c.rowPtr = outPtr
	c.colIdx = c.colIdx[:out]
	c.data = c.data[:out]
}

type rowSegment struct {
	cols []int
	vals []float64
}

func (s rowSegment) Len() int           { return len(s.cols) }
func (s rowSegment) Less(i, j int) bool { return s.cols[i] < s.cols[j] }
func (s rowSegment) Swap(i, j int) {
	s.cols[i], s.cols[j] = s.cols[j], s.cols[i]
	s.vals[i], s.vals[j] = s.vals[j], s.vals[i]
}

// Dims returns the matrix dimensions.
func (c *CSR) Dims() (r, cl int) { return c.rows, c.cols }

// At returns the value at (i, j) using binary search within the row.
func (c *CSR) At(i, j int) float64 {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic("sparse: index out of range")
	}
	start, end := c.rowPtr[i], c.rowPtr[i+1]
	cols := c.colIdx[start:end]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return c.data[start+k]
	}
	return 0
}

// T returns the transpose of the matrix.
func (c *CSR) T() mat.Matrix { return mat.Transpose{Matrix: c} }

// NNZ returns the number of stored entries.
func (c *CSR) NNZ() int { return len(c.data) }

// Row returns the stored columns and values of row i as subslices of the
// matrix's backing arrays. Callers must not modify them.
func (c *CSR) Row(i int) (cols []int, vals []float64) {
	start, end := c.rowPtr[i], c.rowPtr[i+1]
	return c.colIdx[start:end], c.data[start:end]
}

// SliceRows returns a copy of the contiguous row range [from, to). The slice
// keeps the full column dimension, so chunked consumers see a matrix of the
// same width.
func (c *CSR) SliceRows(from, to int) (*CSR, error) {
	if from < 0 || to > c.rows || from >= to {
		return nil, errors.NewValidationError("rows", "invalid row range", []int{from, to})
	}
	start, end := c.rowPtr[from], c.rowPtr[to]
	rowPtr := make([]int, to-from+1)
	for i := from; i <= to; i++ {
		rowPtr[i-from] = c.rowPtr[i] - start
	}
	return &CSR{
		rows:   to - from,
		cols:   c.cols,
		rowPtr: rowPtr,
		colIdx: append([]int(nil), c.colIdx[start:end]...),
		data:   append([]float64(nil), c.data[start:end]...),
	}, nil
}

// ToCOO converts the matrix back to coordinate form with entries in row-major
// order.
func (c *CSR) ToCOO() *COO {
	nnz := len(c.data)
	rowIdx := make([]int, nnz)
	for i := 0; i < c.rows; i++ {
		for k := c.rowPtr[i]; k < c.rowPtr[i+1]; k++ {
			rowIdx[k] = i
		}
	}
	return &COO{
		rows:   c.rows,
		cols:   c.cols,
		rowIdx: rowIdx,
		colIdx: append([]int(nil), c.colIdx...),
		data:   append([]float64(nil), c.data...),
	}
}

// ToDense materializes the matrix as a gonum dense matrix.
func (c *CSR) ToDense() *mat.Dense {
	d := mat.NewDense(c.rows, c.cols, nil)
	for i := 0; i < c.rows; i++ {
		for k := c.rowPtr[i]; k < c.rowPtr[i+1]; k++ {
			d.Set(i, c.colIdx[k], c.data[k])
		}
	}
	return d
}

// RowDot returns the dot product of row i with the dense vector v, which must
// have length equal to the column count.
func (c *CSR) RowDot(i int, v []float64) float64 {
	var sum float64
	for k := c.rowPtr[i]; k < c.rowPtr[i+1]; k++ {
		sum += c.data[k] * v[c.colIdx[k]]
	}
	return sum
}
