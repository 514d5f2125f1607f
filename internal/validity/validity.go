// Package validity scores a clustering against a reference grouping with
// external indices: Rand, Jaccard and normalized mutual information.
package validity

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Scores are the external validity indices of one partition. Each lies in [0, 1].
type Scores struct {
	Rand    float64 `yaml:"rand" json:"rand"`
	Jaccard float64 `yaml:"jaccard" json:"jaccard"`
	NMI     float64 `yaml:"nmi" json:"nmi"`
}

// InputSizeError reports vectors whose lengths do not agree.
type InputSizeError struct {
	What string
	Want int
	Got  int
}

func (e *InputSizeError) Error() string {
	return fmt.Sprintf("input size mismatch: %s has %d items, want %d", e.What, e.Got, e.Want)
}

// Pairs counts item pairs by co-membership: A in the same group under both
// groupings, B under the first only, C under the second only, D under neither.
type Pairs struct {
	A, B, C, D float64
}

// Total returns the number of item pairs.
func (p Pairs) Total() float64 { return p.A + p.B + p.C + p.D }

// contingency is the cross tabulation of two groupings.
type contingency struct {
	n      int
	counts [][]float64
	rows   []float64 // group sizes of the first grouping
	cols   []float64 // group sizes of the second grouping
}

func tabulate(first, second []int) contingency {
	ri, ci := index(first), index(second)
	ct := contingency{
		n:      len(first),
		counts: make([][]float64, len(ri)),
		rows:   make([]float64, len(ri)),
		cols:   make([]float64, len(ci)),
	}
	for i := range ct.counts {
		ct.counts[i] = make([]float64, len(ci))
	}
	for k := range first {
		i, j := ri[first[k]], ci[second[k]]
		ct.counts[i][j]++
		ct.rows[i]++
		ct.cols[j]++
	}
	return ct
}

// index maps group ids to dense positions in ascending id order.
func index(ids []int) map[int]int {
	seen := map[int]struct{}{}
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	keys := make([]int, 0, len(seen))
	for id := range seen {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	out := make(map[int]int, len(keys))
	for i, id := range keys {
		out[id] = i
	}
	return out
}

func comb2(n float64) float64 { return n * (n - 1) / 2 }

// PairCounts computes the pair confusion counts of two groupings.
func PairCounts(clusters, truth []int) (Pairs, error) {
	if len(clusters) != len(truth) {
		return Pairs{}, &InputSizeError{What: "ground truth", Want: len(clusters), Got: len(truth)}
	}
	return tabulate(clusters, truth).pairs(), nil
}

func (ct contingency) pairs() Pairs {
	var a, sameFirst, sameSecond float64
	for i := range ct.counts {
		for _, nij := range ct.counts[i] {
			a += comb2(nij)
		}
	}
	for _, r := range ct.rows {
		sameFirst += comb2(r)
	}
	for _, c := range ct.cols {
		sameSecond += comb2(c)
	}
	total := comb2(float64(ct.n))
	p := Pairs{A: a, B: sameFirst - a, C: sameSecond - a}
	p.D = total - p.A - p.B - p.C
	return p
}

// Score compares a cluster assignment with a ground-truth grouping of the same
// items. Group ids are arbitrary integers; only co-membership matters.
//
// NMI normalizes mutual information by the arithmetic mean of both entropies
// (natural log). It is 0 when exactly one grouping has a single group and 1
// when both do.
func Score(clusters, truth []int) (Scores, error) {
	if len(clusters) != len(truth) {
		return Scores{}, &InputSizeError{What: "ground truth", Want: len(clusters), Got: len(truth)}
	}
	ct := tabulate(clusters, truth)
	p := ct.pairs()

	s := Scores{Rand: 1, Jaccard: 1}
	if total := p.Total(); total > 0 {
		s.Rand = (p.A + p.D) / total
	}
	if denom := p.A + p.B + p.C; denom > 0 {
		s.Jaccard = p.A / denom
	}
	s.NMI = ct.nmi()
	s.Rand = clamp01(s.Rand)
	s.Jaccard = clamp01(s.Jaccard)
	return s, nil
}

func (ct contingency) nmi() float64 {
	if ct.n == 0 {
		return 1
	}
	single1, single2 := len(ct.rows) <= 1, len(ct.cols) <= 1
	switch {
	case single1 && single2:
		return 1
	case single1 || single2:
		return 0
	}
	n := float64(ct.n)
	h1 := stat.Entropy(scale(ct.rows, 1/n))
	h2 := stat.Entropy(scale(ct.cols, 1/n))
	mi := 0.0
	for i, row := range ct.counts {
		for j, nij := range row {
			if nij == 0 {
				continue
			}
			mi += nij / n * math.Log(n*nij/(ct.rows[i]*ct.cols[j]))
		}
	}
	mean := (h1 + h2) / 2
	if mean <= 0 {
		return 0
	}
	return clamp01(mi / mean)
}

func scale(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * f
	}
	return out
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
