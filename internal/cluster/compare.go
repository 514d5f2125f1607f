package cluster

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/validity"
)

// Comparison is the outcome of one linkage method cut at K clusters.
type Comparison struct {
	Method     Method          `yaml:"method" json:"method"`
	Metric     Metric          `yaml:"metric" json:"metric"`
	K          int             `yaml:"k" json:"k"`
	Assignment Assignment      `yaml:"assignment" json:"assignment"`
	Sizes      []int           `yaml:"sizes" json:"sizes"`
	Scores     validity.Scores `yaml:"scores" json:"scores"`
	Tree       *Tree           `yaml:"-" json:"-"`
}

// Compare builds one tree per method concurrently, cuts each at k and scores
// it against truth. Results follow the order of methods. The first failure
// cancels the remaining work.
func Compare(ctx context.Context, x mat.Matrix, truth []int, methods []Method, metric Metric, k int) ([]Comparison, error) {
	if len(methods) == 0 {
		methods = Methods
	}
	if n, _ := x.Dims(); len(truth) != n {
		return nil, &validity.InputSizeError{What: "ground truth", Want: n, Got: len(truth)}
	}
	out := make([]Comparison, len(methods))
	p := pool.New().
		WithMaxGoroutines(runtime.GOMAXPROCS(0)).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i, m := range methods {
		i, m := i, m
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := compareOne(x, truth, m, metric, k)
			if err != nil {
				return fmt.Errorf("%s linkage: %w", m, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func compareOne(x mat.Matrix, truth []int, method Method, metric Metric, k int) (Comparison, error) {
	an, err := NewAnalyzer(method, metric)
	if err != nil {
		return Comparison{}, err
	}
	if err := an.Build(x); err != nil {
		return Comparison{}, err
	}
	as, err := an.Cut(k)
	if err != nil {
		return Comparison{}, err
	}
	sc, err := an.Score(truth)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Method:     an.method,
		Metric:     an.metric,
		K:          k,
		Assignment: as,
		Sizes:      as.Sizes(),
		Scores:     sc,
		Tree:       an.Tree(),
	}, nil
}
