package dataset

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Matrix extracts the named attributes as an N x M numeric matrix. Row order
// follows the table; column order follows attrs.
func Matrix(t *Table, attrs []string) (*mat.Dense, error) {
	if len(attrs) == 0 {
		return nil, &SchemaError{Row: -1, Reason: "no attributes selected"}
	}
	for _, a := range attrs {
		if !t.HasColumn(a) {
			return nil, &SchemaError{Column: a, Row: -1, Reason: "attribute not found"}
		}
	}
	if t.Len() == 0 {
		return nil, &SchemaError{Row: -1, Reason: "table has no records"}
	}
	data := make([]float64, 0, t.Len()*len(attrs))
	for i, r := range t.records {
		for _, a := range attrs {
			v := r[a]
			switch v.Kind {
			case KindNumber:
				data = append(data, v.Num)
			case KindMissing:
				return nil, &EncodingError{Column: a, Row: i, Reason: "missing value in numeric attribute"}
			default:
				return nil, &EncodingError{Column: a, Row: i, Value: v.Text, Reason: "value is not numeric"}
			}
		}
	}
	return mat.NewDense(t.Len(), len(attrs), data), nil
}

// Labels extracts a ground-truth grouping from column. Integer-valued numeric
// columns keep their values as group ids; otherwise each distinct label maps to
// its index in lexicographic order. The second result lists the distinct
// labels, ordered by group id.
func Labels(t *Table, column string) ([]int, []string, error) {
	vals, err := t.Column(column)
	if err != nil {
		return nil, nil, err
	}
	integral := true
	for i, v := range vals {
		if v.IsMissing() {
			return nil, nil, &EncodingError{Column: column, Row: i, Reason: "missing label"}
		}
		if !v.isInteger() {
			integral = false
		}
	}
	ids := make([]int, len(vals))
	if integral {
		distinct := map[int]struct{}{}
		for i, v := range vals {
			ids[i] = int(v.Num)
			distinct[ids[i]] = struct{}{}
		}
		keys := make([]int, 0, len(distinct))
		for k := range distinct {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = Number(float64(k)).Label()
		}
		return ids, names, nil
	}
	set := map[string]struct{}{}
	for _, v := range vals {
		set[v.Label()] = struct{}{}
	}
	names := sortedLabels(set)
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	for i, v := range vals {
		ids[i] = index[v.Label()]
	}
	return ids, names, nil
}
