// Package pipeline composes the analysis stages: clean, build the attribute
// matrix and ground truth, standardize, decompose, then cluster and score.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/cluster"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/dataset"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/pca"
	"github.com/emilcphu/dtu-intro-to-ml-dm/internal/standardize"
)

// Stage names used in StageError and log fields.
const (
	StageClean       = "clean"
	StageMatrix      = "matrix"
	StageStandardize = "standardize"
	StagePCA         = "pca"
	StageCluster     = "cluster"
)

// StageError wraps the failure of one stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Options configure a run.
type Options struct {
	Clean      dataset.CleanSpec
	Attributes []string
	// Label is the ground-truth column. Required for clustering.
	Label     string
	Policy    standardize.Policy
	Threshold float64
	// Components selects the two (or more) components for the projection.
	Components []int
	Methods    []cluster.Method
	Metric     cluster.Metric
	K          int
	// SkipPCA and SkipCluster disable the respective stages.
	SkipPCA     bool
	SkipCluster bool

	Logger logrus.FieldLogger
}

// Prepared is the cleaned table and its numeric views.
type Prepared struct {
	Table   *dataset.Table
	X       *mat.Dense
	Z       *mat.Dense
	Scale   *standardize.Transform
	Truth   []int
	Classes []string
}

// Prepare runs clean, matrix and standardize.
func Prepare(ctx context.Context, t *dataset.Table, opt Options) (*Prepared, error) {
	log := logger(opt)
	p := &Prepared{}

	err := stage(ctx, log, StageClean, func() error {
		ct, err := dataset.Clean(t, opt.Clean)
		if err != nil {
			return err
		}
		p.Table = ct
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, log, StageMatrix, func() error {
		attrs := opt.Attributes
		if len(attrs) == 0 {
			attrs = numericColumns(p.Table, opt.Label)
		}
		x, err := dataset.Matrix(p.Table, attrs)
		if err != nil {
			return err
		}
		p.X = x
		if opt.Label != "" {
			truth, classes, err := dataset.Labels(p.Table, opt.Label)
			if err != nil {
				return err
			}
			p.Truth, p.Classes = truth, classes
		}
		r, c := x.Dims()
		log.WithFields(logrus.Fields{"rows": r, "cols": c}).Debug("attribute matrix built")
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, log, StageStandardize, func() error {
		z, tr, err := standardize.Fit(p.X, standardize.Options{Policy: opt.Policy, Columns: attributeNames(p.Table, opt)})
		if err != nil {
			return err
		}
		if len(tr.Degenerate) > 0 {
			log.WithField("columns", tr.Degenerate).Warn("constant columns left centered only")
		}
		p.Z, p.Scale = z, tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Run executes every stage and collects the results. Cancellation is checked
// between stages.
func Run(ctx context.Context, t *dataset.Table, opt Options) (*Result, error) {
	log := logger(opt)
	start := time.Now()
	res := &Result{ID: uuid.NewString(), Rows: t.Len()}
	log = log.WithField("run", res.ID)
	opt.Logger = log

	p, err := Prepare(ctx, t, opt)
	if err != nil {
		return nil, err
	}
	res.Attributes = attributeNames(p.Table, opt)
	res.Label = opt.Label
	res.Classes = p.Classes
	res.Standardize = p.Scale

	if !opt.SkipPCA {
		err = stage(ctx, log, StagePCA, func() error {
			sum, err := summarizePCA(p.Z, res.Attributes, opt)
			if err != nil {
				return err
			}
			res.PCA = sum
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if !opt.SkipCluster {
		err = stage(ctx, log, StageCluster, func() error {
			if p.Truth == nil {
				return fmt.Errorf("a label column is required for cluster validation")
			}
			methods, skipped := usableMethods(opt.Methods, opt.Metric)
			for _, m := range skipped {
				msg := fmt.Sprintf("%s linkage skipped: requires the euclidean metric", m)
				res.Warnings = append(res.Warnings, msg)
				log.Warn(msg)
			}
			if len(methods) == 0 {
				return cluster.ErrWardMetric
			}
			cmp, err := cluster.Compare(ctx, p.Z, p.Truth, methods, opt.Metric, opt.K)
			if err != nil {
				return err
			}
			res.Clusters = cmp
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	res.Elapsed = time.Since(start)
	log.WithField("elapsed", res.Elapsed).Info("analysis complete")
	return res, nil
}

func summarizePCA(z *mat.Dense, attrs []string, opt Options) (*PCASummary, error) {
	dec, err := pca.Decompose(z)
	if err != nil {
		return nil, err
	}
	sum := &PCASummary{
		Singular:   dec.S(),
		Rho:        dec.Rho(),
		Cumulative: dec.Cumulative(),
		Threshold:  opt.Threshold,
	}
	if opt.Threshold > 0 {
		sum.ComponentsForThreshold = dec.ComponentsForThreshold(opt.Threshold)
	}
	pc1, err := dec.Loadings(0)
	if err != nil {
		return nil, err
	}
	for i, w := range pc1 {
		sum.Loadings = append(sum.Loadings, Loading{Attribute: attrs[i], Weight: w})
	}
	comps := opt.Components
	if len(comps) == 0 {
		comps = []int{0, 1}
	}
	if dec.Components() < 2 && len(opt.Components) == 0 {
		comps = []int{0}
	}
	proj, err := dec.Project(z, comps)
	if err != nil {
		return nil, err
	}
	sum.Components = comps
	r, _ := proj.Dims()
	sum.Projection = make([][]float64, r)
	for i := range sum.Projection {
		sum.Projection[i] = mat.Row(nil, i, proj)
	}
	return sum, nil
}

// usableMethods drops ward when the metric is not euclidean.
func usableMethods(methods []cluster.Method, metric cluster.Metric) (ok, skipped []cluster.Method) {
	if len(methods) == 0 {
		methods = cluster.Methods
	}
	for _, m := range methods {
		if m == cluster.Ward && metric != cluster.Euclidean {
			skipped = append(skipped, m)
			continue
		}
		ok = append(ok, m)
	}
	return ok, skipped
}

func stage(ctx context.Context, log logrus.FieldLogger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}
	now := time.Now()
	if err := fn(); err != nil {
		log.WithField("stage", name).WithError(err).Debug("stage failed")
		return &StageError{Stage: name, Err: err}
	}
	log.WithFields(logrus.Fields{"stage": name, "elapsed": time.Since(now)}).Debug("stage done")
	return nil
}

func logger(opt Options) logrus.FieldLogger {
	if opt.Logger != nil {
		return opt.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// numericColumns returns every all-numeric column except the label, in table
// order.
func numericColumns(t *dataset.Table, label string) []string {
	var out []string
	for _, c := range t.Columns() {
		if c == label {
			continue
		}
		vals, err := t.Column(c)
		if err != nil {
			continue
		}
		numeric := len(vals) > 0
		for _, v := range vals {
			if !v.IsNumber() {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, c)
		}
	}
	return out
}

func attributeNames(t *dataset.Table, opt Options) []string {
	if len(opt.Attributes) > 0 {
		return append([]string(nil), opt.Attributes...)
	}
	return numericColumns(t, opt.Label)
}
