// Package standardize centers and scales the columns of a numeric matrix.
package standardize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Policy decides what happens to zero-variance columns.
type Policy int

const (
	// Reject fails with a DegenerateColumnError.
	Reject Policy = iota
	// CenterOnly centers the column and leaves its scale at 1.
	CenterOnly
)

func (p Policy) String() string {
	if p == CenterOnly {
		return "center"
	}
	return "reject"
}

// ParsePolicy maps "reject" or "center" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return Reject, nil
	case "center", "center-only", "center_only":
		return CenterOnly, nil
	}
	return Reject, fmt.Errorf("unknown degenerate policy %q (use reject|center)", s)
}

// ErrShape is returned for an empty matrix or one that does not match the
// fitted column count.
var ErrShape = errors.New("standardize: matrix shape mismatch")

// DegenerateColumnError reports a column with zero variance.
type DegenerateColumnError struct {
	Index  int
	Column string
	Mean   float64
}

func (e *DegenerateColumnError) Error() string {
	name := e.Column
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("standardize: column %s has zero variance (constant %.6g)", name, e.Mean)
}

// Options configure Fit.
type Options struct {
	Policy Policy
	// Columns names the matrix columns for error messages. Optional.
	Columns []string
}

// Transform holds the per-column statistics used by Fit so that the same
// scaling can be applied to other data.
type Transform struct {
	Mean []float64 `yaml:"mean" json:"mean"`
	Std  []float64 `yaml:"std" json:"std"`
	// Degenerate lists columns left centered-only under CenterOnly.
	Degenerate []int `yaml:"degenerate,omitempty" json:"degenerate,omitempty"`
}

// Fit computes column means and population standard deviations of x and
// returns the standardized copy. x is not modified.
func Fit(x mat.Matrix, opt Options) (*mat.Dense, *Transform, error) {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return nil, nil, fmt.Errorf("%w: empty %dx%d matrix", ErrShape, r, c)
	}
	tr := &Transform{Mean: make([]float64, c), Std: make([]float64, c)}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		if degenerate(mean, std) {
			if opt.Policy == Reject {
				e := &DegenerateColumnError{Index: j, Mean: mean}
				if j < len(opt.Columns) {
					e.Column = opt.Columns[j]
				}
				return nil, nil, e
			}
			tr.Degenerate = append(tr.Degenerate, j)
			std = 1
		}
		tr.Mean[j] = mean
		tr.Std[j] = std
	}
	out, err := tr.Apply(x)
	if err != nil {
		return nil, nil, err
	}
	return out, tr, nil
}

// Apply standardizes x with the fitted statistics.
func (t *Transform) Apply(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != len(t.Mean) {
		return nil, fmt.Errorf("%w: fitted %d columns, got %d", ErrShape, len(t.Mean), c)
	}
	if r == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrShape)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - t.Mean[j]) / t.Std[j]
	}, x)
	return out, nil
}

// degenerate treats a standard deviation as zero when it is negligible
// relative to the column's magnitude; summation error keeps constant columns
// from producing an exact zero.
func degenerate(mean, std float64) bool {
	return std <= 1e-12*math.Max(1, math.Abs(mean)) || math.IsNaN(std)
}
