// Package pca computes principal components of a standardized matrix through
// a thin singular value decomposition.
//
// For an N x M input the decomposition keeps r = min(N, M) components:
// U is N x r, S has r non-negative values in descending order and V is M x r.
package pca

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrComponent is returned for a component index outside [0, r).
	ErrComponent = errors.New("pca: component index out of range")
	// ErrShape is returned when a matrix to project has the wrong column count.
	ErrShape = errors.New("pca: column count mismatch")
)

// NumericalError reports a decomposition that could not be computed.
type NumericalError struct {
	Reason string
}

func (e *NumericalError) Error() string { return "pca: numerical error: " + e.Reason }

// Result holds the decomposition X = U diag(S) V^T and the derived
// variance-explained ratios. It is read-only after Decompose.
type Result struct {
	u   *mat.Dense
	s   []float64
	v   *mat.Dense
	rho []float64
}

// Decompose factorizes x. Each right singular vector is oriented so that its
// largest absolute loading is positive, which fixes the sign ambiguity of the
// SVD; the matching left singular vector is flipped with it.
func Decompose(x mat.Matrix) (*Result, error) {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &NumericalError{Reason: fmt.Sprintf("non-finite value at (%d, %d)", i, j)}
			}
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, &NumericalError{Reason: "singular value decomposition did not converge"}
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	orient(&u, &v)

	total := 0.0
	for _, sv := range s {
		total += sv * sv
	}
	if total == 0 {
		return nil, &NumericalError{Reason: "input has zero total variance"}
	}
	rho := make([]float64, len(s))
	for k, sv := range s {
		rho[k] = sv * sv / total
	}
	return &Result{u: &u, s: s, v: &v, rho: rho}, nil
}

func orient(u, v *mat.Dense) {
	m, k := v.Dims()
	n, _ := u.Dims()
	for j := 0; j < k; j++ {
		best, at := 0.0, 0
		for i := 0; i < m; i++ {
			if a := math.Abs(v.At(i, j)); a > best {
				best, at = a, i
			}
		}
		if v.At(at, j) >= 0 {
			continue
		}
		for i := 0; i < m; i++ {
			v.Set(i, j, -v.At(i, j))
		}
		for i := 0; i < n; i++ {
			u.Set(i, j, -u.At(i, j))
		}
	}
}

// Components returns r = min(N, M).
func (r *Result) Components() int { return len(r.s) }

// U returns a copy of the left singular vectors.
func (r *Result) U() *mat.Dense { return mat.DenseCopyOf(r.u) }

// V returns a copy of the right singular vectors (the principal axes).
func (r *Result) V() *mat.Dense { return mat.DenseCopyOf(r.v) }

// S returns a copy of the singular values.
func (r *Result) S() []float64 { return append([]float64(nil), r.s...) }

// Rho returns the variance-explained ratios S[k]^2 / sum(S^2).
func (r *Result) Rho() []float64 { return append([]float64(nil), r.rho...) }

// Cumulative returns the running sum of Rho.
func (r *Result) Cumulative() []float64 {
	out := make([]float64, len(r.rho))
	floats.CumSum(out, r.rho)
	return out
}

// CumulativeVarianceExplained returns rho[0] + ... + rho[k-1].
// k is clamped to [0, Components()].
func (r *Result) CumulativeVarianceExplained(k int) float64 {
	if k <= 0 {
		return 0
	}
	if k > len(r.rho) {
		k = len(r.rho)
	}
	return floats.Sum(r.rho[:k])
}

// ComponentsForThreshold returns the smallest k whose cumulative variance
// explained reaches t. Comparisons allow 1e-9 of rounding, so t >= 1 yields
// Components().
func (r *Result) ComponentsForThreshold(t float64) int {
	if t <= 0 {
		return 0
	}
	const tol = 1e-9
	cum := 0.0
	for k, p := range r.rho {
		cum += p
		if cum >= t-tol {
			return k + 1
		}
	}
	return len(r.rho)
}

// Loadings returns column k of V.
func (r *Result) Loadings(k int) ([]float64, error) {
	if k < 0 || k >= len(r.s) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrComponent, k, len(r.s))
	}
	m, _ := r.v.Dims()
	return mat.Col(make([]float64, m), k, r.v), nil
}

// Project returns the coordinates of each row of x in the space spanned by
// the selected components: x V[:, comps].
func (r *Result) Project(x mat.Matrix, comps []int) (*mat.Dense, error) {
	m, _ := r.v.Dims()
	n, c := x.Dims()
	if c != m {
		return nil, fmt.Errorf("%w: basis has %d rows, matrix has %d columns", ErrShape, m, c)
	}
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: no components selected", ErrComponent)
	}
	basis := mat.NewDense(m, len(comps), nil)
	col := make([]float64, m)
	for j, k := range comps {
		if k < 0 || k >= len(r.s) {
			return nil, fmt.Errorf("%w: %d (have %d)", ErrComponent, k, len(r.s))
		}
		basis.SetCol(j, mat.Col(col, k, r.v))
	}
	out := mat.NewDense(n, len(comps), nil)
	out.Mul(x, basis)
	return out, nil
}

// Scores returns U diag(S), the projection of the decomposed matrix onto all
// components.
func (r *Result) Scores() *mat.Dense {
	out := mat.DenseCopyOf(r.u)
	out.Apply(func(_, j int, v float64) float64 { return v * r.s[j] }, out)
	return out
}

// Reconstruct returns U diag(S) V^T.
func (r *Result) Reconstruct() *mat.Dense {
	var out mat.Dense
	out.Mul(r.Scores(), r.v.T())
	return &out
}
