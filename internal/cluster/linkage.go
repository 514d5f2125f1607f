// Package cluster implements agglomerative hierarchical clustering with the
// Lance-Williams update rule, tree cutting, and a small analyzer that scores
// partitions against a reference grouping.
package cluster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrWardMetric is returned when ward linkage is paired with a
	// non-euclidean metric.
	ErrWardMetric = errors.New("cluster: ward linkage requires the euclidean metric")
	// ErrEmpty is returned for a matrix without rows.
	ErrEmpty = errors.New("cluster: no observations")
	// ErrNonFinite is returned when the input contains NaN or Inf.
	ErrNonFinite = errors.New("cluster: non-finite value in input")
)

// Linkage builds the merge tree of the rows of x.
//
// Leaves carry ids 0..N-1 and the cluster created by merge i carries id N+i.
// At each step the pair with the smallest linkage distance is merged; among
// equal distances the pair whose sorted (id, id) is lexicographically smallest
// wins, so the result is fully deterministic.
func Linkage(x mat.Matrix, method Method, metric Metric) (*Tree, error) {
	method, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}
	metric, err = ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	if method == Ward && metric != Euclidean {
		return nil, ErrWardMetric
	}
	n, c := x.Dims()
	if n == 0 {
		return nil, ErrEmpty
	}
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(make([]float64, c), i, x)
		for j, v := range rows[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w at (%d, %d)", ErrNonFinite, i, j)
			}
		}
	}

	// slot i holds one active cluster; d is the full symmetric distance matrix
	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := metric.Distance(rows[i], rows[j])
			d[i*n+j] = v
			d[j*n+i] = v
		}
	}
	id := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range id {
		id[i], size[i], active[i] = i, 1, true
	}

	merges := make([]Merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		bi, bj := -1, -1
		best := math.Inf(1)
		var bestKey [2]int
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				dij := d[i*n+j]
				key := pairKey(id[i], id[j])
				if bi < 0 || dij < best || (dij == best && keyLess(key, bestKey)) {
					bi, bj, best, bestKey = i, j, dij, key
				}
			}
		}

		ni, nj := size[bi], size[bj]
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			v := update(method, d[bi*n+k], d[bj*n+k], best, ni, nj, size[k])
			d[bi*n+k] = v
			d[k*n+bi] = v
		}
		merges = append(merges, Merge{A: bestKey[0], B: bestKey[1], Distance: best, Size: ni + nj})
		active[bj] = false
		id[bi] = n + step
		size[bi] = ni + nj
	}
	return &Tree{n: n, method: method, metric: metric, merges: merges}, nil
}

// update is the Lance-Williams recurrence: the distance from cluster k to the
// union of clusters i and j.
func update(method Method, dik, djk, dij float64, ni, nj, nk int) float64 {
	fi, fj, fk := float64(ni), float64(nj), float64(nk)
	switch method {
	case Single:
		return math.Min(dik, djk)
	case Complete:
		return math.Max(dik, djk)
	case Average:
		return (fi*dik + fj*djk) / (fi + fj)
	case Ward:
		v := ((fi+fk)*dik*dik + (fj+fk)*djk*djk - fk*dij*dij) / (fi + fj + fk)
		if v < 0 {
			v = 0
		}
		return math.Sqrt(v)
	}
	panic("cluster: unknown method " + string(method))
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func keyLess(a, b [2]int) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}
