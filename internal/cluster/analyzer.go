package cluster

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/validity"
)

// ErrState is returned when Analyzer operations are called out of order.
var ErrState = errors.New("cluster: operation not valid in current state")

// State of an Analyzer.
type State int

const (
	Uninitialized State = iota
	TreeBuilt
	AssignmentReady
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case TreeBuilt:
		return "tree-built"
	case AssignmentReady:
		return "assignment-ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Analyzer drives one clustering: Build, then Cut (any number of times), then
// Score against a reference grouping.
type Analyzer struct {
	method Method
	metric Metric

	state  State
	rows   int
	tree   *Tree
	assign Assignment
}

// NewAnalyzer validates the method/metric pair.
func NewAnalyzer(method Method, metric Metric) (*Analyzer, error) {
	m, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}
	d, err := ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	if m == Ward && d != Euclidean {
		return nil, ErrWardMetric
	}
	return &Analyzer{method: m, metric: d}, nil
}

// State reports how far the analyzer has progressed.
func (a *Analyzer) State() State { return a.state }

// Tree returns the built tree, or nil before Build.
func (a *Analyzer) Tree() *Tree { return a.tree }

// Build computes the linkage tree. It may only be called once.
func (a *Analyzer) Build(x mat.Matrix) error {
	if a.state != Uninitialized {
		return fmt.Errorf("%w: build called in state %s", ErrState, a.state)
	}
	t, err := Linkage(x, a.method, a.metric)
	if err != nil {
		return err
	}
	a.tree = t
	a.rows = t.Observations()
	a.state = TreeBuilt
	return nil
}

// Cut partitions the tree into k clusters. The returned slice is a copy.
func (a *Analyzer) Cut(k int) (Assignment, error) {
	if a.state == Uninitialized {
		return nil, fmt.Errorf("%w: cut called before build", ErrState)
	}
	as, err := a.tree.Cut(k)
	if err != nil {
		return nil, err
	}
	a.assign = as
	a.state = AssignmentReady
	return append(Assignment(nil), as...), nil
}

// Score compares the current assignment with truth.
func (a *Analyzer) Score(truth []int) (validity.Scores, error) {
	if a.state != AssignmentReady {
		return validity.Scores{}, fmt.Errorf("%w: score called in state %s", ErrState, a.state)
	}
	if len(truth) != a.rows {
		return validity.Scores{}, &validity.InputSizeError{What: "ground truth", Want: a.rows, Got: len(truth)}
	}
	return validity.Score(a.assign, truth)
}
