// Package tensor defines the numeric boundary between the noteroll codec and
// the model-inference runtime. Converters produce host-resident Dense
// tensors; decoders accept any Tensor, whose data may live off-host (on an
// accelerator) until fetched.
package tensor

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrFreed is returned when fetching a tensor whose buffer was released.
var ErrFreed = errors.New("tensor buffer already freed")

// Tensor is a dense 2-D numeric buffer of fixed shape. Fetch blocks until a
// host copy of the data is available — for accelerator-backed
// implementations this is a single device-to-host transfer with no partial
// visibility. Free releases the buffer; a freed tensor cannot be fetched.
type Tensor interface {
	Dims() (rows, cols int)
	Fetch(ctx context.Context) (mat.Matrix, error)
	Free()
}

// Dense is a host-resident Tensor backed by a gonum matrix. It is the type
// every encoder returns.
type Dense struct {
	m *mat.Dense
}

// NewDense allocates a zeroed rows x cols tensor.
func NewDense(rows, cols int) *Dense {
	return &Dense{m: mat.NewDense(rows, cols, nil)}
}

// FromRows builds a Dense from row-major nested slices. All rows must have
// equal length.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return nil, errors.New("tensor needs at least one row")
	}
	cols := len(rows[0])
	d := NewDense(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged tensor: row %d has %d values, want %d", i, len(row), cols)
		}
		d.m.SetRow(i, row)
	}
	return d, nil
}

// Dims returns the tensor shape.
func (d *Dense) Dims() (rows, cols int) {
	if d.m == nil {
		return 0, 0
	}
	return d.m.Dims()
}

// At reads a single cell.
func (d *Dense) At(i, j int) float64 { return d.m.At(i, j) }

// Set writes a single cell.
func (d *Dense) Set(i, j int, v float64) { d.m.Set(i, j, v) }

// Fetch returns the host matrix. The data is already resident, so the only
// failure modes are cancellation and use-after-free.
func (d *Dense) Fetch(ctx context.Context) (mat.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.m == nil {
		return nil, ErrFreed
	}
	return d.m, nil
}

// Free releases the buffer.
func (d *Dense) Free() { d.m = nil }

// Rows flattens the tensor into row-major nested slices, for JSON transport.
func (d *Dense) Rows() [][]float64 {
	r, c := d.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, d.m)
		out[i] = row
	}
	return out
}

// ArgmaxRows fetches t once and returns the index of the maximum value in
// each row. Ties resolve to the lowest index.
func ArgmaxRows(ctx context.Context, t Tensor) ([]int, error) {
	m, err := t.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	labels := make([]int, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, m)
		labels[i] = floats.MaxIdx(row)
	}
	return labels, nil
}

// OneHot expands per-row labels into a [len(labels), depth] tensor with a
// single 1 per row.
func OneHot(labels []int, depth int) (*Dense, error) {
	d := NewDense(len(labels), depth)
	for i, label := range labels {
		if label < 0 || label >= depth {
			return nil, fmt.Errorf("label %d at row %d outside one-hot depth %d", label, i, depth)
		}
		d.Set(i, label, 1)
	}
	return d, nil
}
