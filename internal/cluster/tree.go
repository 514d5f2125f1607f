package cluster

import (
	"errors"
	"fmt"
)

// ErrClusterCount is returned when a tree is cut into fewer than one or more
// than N clusters.
var ErrClusterCount = errors.New("cluster: cluster count out of range")

// Merge is one agglomeration step. A < B are the ids of the merged clusters.
type Merge struct {
	A        int     `yaml:"a" json:"a"`
	B        int     `yaml:"b" json:"b"`
	Distance float64 `yaml:"distance" json:"distance"`
	Size     int     `yaml:"size" json:"size"`
}

// Tree is an immutable linkage tree over N observations.
type Tree struct {
	n      int
	method Method
	metric Metric
	merges []Merge
}

// Method returns the linkage method the tree was built with.
func (t *Tree) Method() Method { return t.method }

// Metric returns the distance metric between observations.
func (t *Tree) Metric() Metric { return t.metric }

// Observations returns N.
func (t *Tree) Observations() int { return t.n }

// Merges returns a copy of the N-1 merge steps in order.
func (t *Tree) Merges() []Merge { return append([]Merge(nil), t.merges...) }

// Cut partitions the observations into k clusters by applying the first N-k
// merges. Cluster ids run from 1 to k in order of each cluster's first row.
func (t *Tree) Cut(k int) (Assignment, error) {
	if k < 1 || k > t.n {
		return nil, fmt.Errorf("%w: k=%d, observations=%d", ErrClusterCount, k, t.n)
	}
	parent := make([]int, 2*t.n-1)
	for i := range parent {
		parent[i] = -1
	}
	for s := 0; s < t.n-k; s++ {
		m := t.merges[s]
		parent[m.A] = t.n + s
		parent[m.B] = t.n + s
	}
	root := func(x int) int {
		for parent[x] >= 0 {
			x = parent[x]
		}
		return x
	}
	labels := map[int]int{}
	out := make(Assignment, t.n)
	for i := 0; i < t.n; i++ {
		r := root(i)
		l, ok := labels[r]
		if !ok {
			l = len(labels) + 1
			labels[r] = l
		}
		out[i] = l
	}
	return out, nil
}

// Leaves returns the observation indices in dendrogram order: a depth-first
// walk from the root visiting the lower-id child first.
func (t *Tree) Leaves() []int {
	if t.n == 0 {
		return nil
	}
	out := make([]int, 0, t.n)
	stack := []int{2*t.n - 2}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node < t.n {
			out = append(out, node)
			continue
		}
		m := t.merges[node-t.n]
		stack = append(stack, m.B, m.A)
	}
	return out
}

// Assignment maps row index to cluster id in 1..K.
type Assignment []int

// K returns the number of clusters.
func (a Assignment) K() int {
	k := 0
	for _, c := range a {
		if c > k {
			k = c
		}
	}
	return k
}

// Sizes returns the number of rows per cluster, indexed by id-1.
func (a Assignment) Sizes() []int {
	out := make([]int, a.K())
	for _, c := range a {
		out[c-1]++
	}
	return out
}
