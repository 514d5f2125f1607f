package cluster

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Method is an agglomerative linkage criterion.
type Method string

const (
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
	Ward     Method = "ward"
)

// Methods lists every supported linkage method.
var Methods = []Method{Single, Complete, Average, Ward}

// ParseMethod validates a linkage method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown linkage method %q (use single|complete|average|ward)", s)
}

// Metric is a distance between observations.
type Metric string

const (
	Euclidean   Metric = "euclidean"
	SqEuclidean Metric = "sqeuclidean"
	CityBlock   Metric = "cityblock"
	Chebyshev   Metric = "chebyshev"
)

// ParseMetric validates a distance metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case Euclidean, SqEuclidean, CityBlock, Chebyshev:
		return m, nil
	case "manhattan":
		return CityBlock, nil
	}
	return "", fmt.Errorf("unknown metric %q (use euclidean|sqeuclidean|cityblock|chebyshev)", s)
}

// Distance returns the distance between a and b.
func (m Metric) Distance(a, b []float64) float64 {
	switch m {
	case SqEuclidean:
		d := floats.Distance(a, b, 2)
		return d * d
	case CityBlock:
		return floats.Distance(a, b, 1)
	case Chebyshev:
		return floats.Distance(a, b, math.Inf(1))
	default:
		return floats.Distance(a, b, 2)
	}
}
