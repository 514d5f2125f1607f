package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Rule selects how a categorical column is turned into indicator columns.
type Rule string

const (
	// RuleBinary maps a two-label column to a single 0/1 column.
	RuleBinary Rule = "binary"
	// RuleOneHot maps an L-label column to L (or L-1) 0/1 columns.
	RuleOneHot Rule = "onehot"
)

// ParseRule validates a rule name.
func ParseRule(s string) (Rule, error) {
	switch Rule(strings.ToLower(strings.TrimSpace(s))) {
	case RuleBinary:
		return RuleBinary, nil
	case RuleOneHot, "one-hot", "one_hot":
		return RuleOneHot, nil
	}
	return "", fmt.Errorf("unknown encoding rule %q (use binary|onehot)", s)
}

// Encoding describes how one categorical column is encoded.
type Encoding struct {
	Column string `mapstructure:"column" yaml:"column" json:"column"`
	Rule   Rule   `mapstructure:"rule" yaml:"rule" json:"rule"`
	// DropFirst removes the first (lexicographically smallest) level of a one-hot encoding.
	DropFirst bool `mapstructure:"drop_first" yaml:"drop_first,omitempty" json:"drop_first,omitempty"`
	// Labels is the expected label set. Empty means "whatever occurs".
	Labels []string `mapstructure:"labels" yaml:"labels,omitempty" json:"labels,omitempty"`
	// Positive is the label encoded as 1 by a binary encoding.
	// Defaults to the lexicographically last label.
	Positive string `mapstructure:"positive" yaml:"positive,omitempty" json:"positive,omitempty"`
	// Name overrides the output column name of a binary encoding.
	Name string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	// Keep retains the source column next to the encoded ones.
	Keep bool `mapstructure:"keep" yaml:"keep,omitempty" json:"keep,omitempty"`
}

// CleanSpec lists the columns to drop and the encodings to apply.
type CleanSpec struct {
	Drop      []string
	Encodings []Encoding
}

// plan is the resolved output of one encoding.
type plan struct {
	enc    Encoding
	names  []string // output column names
	levels []string // label encoded as 1 in the matching output column
}

// Clean drops identifier columns and encodes categorical columns, returning a
// new Table. Column order follows the source; encoded columns take the place
// of their source column.
func Clean(t *Table, spec CleanSpec) (*Table, error) {
	dropped := make(map[string]struct{}, len(spec.Drop))
	for _, c := range spec.Drop {
		if !t.HasColumn(c) {
			return nil, &SchemaError{Column: c, Row: -1, Reason: "cannot drop: column not found"}
		}
		dropped[c] = struct{}{}
	}

	plans := make(map[string]*plan, len(spec.Encodings))
	for _, enc := range spec.Encodings {
		if !t.HasColumn(enc.Column) {
			return nil, &SchemaError{Column: enc.Column, Row: -1, Reason: "cannot encode: column not found"}
		}
		if _, ok := dropped[enc.Column]; ok {
			return nil, &SchemaError{Column: enc.Column, Row: -1, Reason: "cannot encode: column is dropped"}
		}
		if _, dup := plans[enc.Column]; dup {
			return nil, &SchemaError{Column: enc.Column, Row: -1, Reason: "column encoded twice"}
		}
		p, err := planEncoding(t, enc)
		if err != nil {
			return nil, err
		}
		plans[enc.Column] = p
	}

	var columns []string
	for _, c := range t.columns {
		if _, ok := dropped[c]; ok {
			continue
		}
		p, ok := plans[c]
		if !ok {
			columns = append(columns, c)
			continue
		}
		if p.enc.Keep {
			columns = append(columns, c)
		}
		columns = append(columns, p.names...)
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return nil, &SchemaError{Column: c, Row: -1, Reason: "encoded column name collides with an existing column"}
		}
		seen[c] = struct{}{}
	}

	records := make([]Record, len(t.records))
	for i, src := range t.records {
		rec := make(Record, len(columns))
		for c, v := range src {
			if _, ok := dropped[c]; ok {
				continue
			}
			p, ok := plans[c]
			if !ok || p.enc.Keep {
				rec[c] = v
			}
			if !ok {
				continue
			}
			label := v.Label()
			for k, name := range p.names {
				if label == p.levels[k] {
					rec[name] = Number(1)
				} else {
					rec[name] = Number(0)
				}
			}
		}
		records[i] = rec
	}
	return NewTable(columns, records)
}

func planEncoding(t *Table, enc Encoding) (*plan, error) {
	expected := make(map[string]struct{}, len(enc.Labels))
	for _, l := range enc.Labels {
		expected[l] = struct{}{}
	}
	observed := map[string]struct{}{}
	for i, r := range t.records {
		v := r[enc.Column]
		if v.IsMissing() {
			return nil, &EncodingError{Column: enc.Column, Row: i, Reason: "missing value in categorical column"}
		}
		label := v.Label()
		if len(expected) > 0 {
			if _, ok := expected[label]; !ok {
				return nil, &EncodingError{Column: enc.Column, Row: i, Value: label, Reason: "label outside expected set"}
			}
		}
		observed[label] = struct{}{}
	}
	levelSet := observed
	if len(expected) > 0 {
		levelSet = expected
	}
	p := &plan{enc: enc}

	switch enc.Rule {
	case RuleBinary:
		set := make(map[string]struct{}, len(levelSet)+1)
		for l := range levelSet {
			set[l] = struct{}{}
		}
		if enc.Positive != "" {
			set[enc.Positive] = struct{}{}
		}
		levels := sortedLabels(set)
		if len(levels) > 2 {
			return nil, &EncodingError{Column: enc.Column, Row: -1, Value: levels[2], Reason: fmt.Sprintf("binary encoding needs at most two labels, found %d (%s)", len(levels), strings.Join(levels, ", "))}
		}
		positive := enc.Positive
		if positive == "" && len(levels) > 0 {
			positive = levels[len(levels)-1]
		}
		name := enc.Name
		if name == "" {
			name = levelColumn(enc.Column, positive)
		}
		p.names = []string{name}
		p.levels = []string{positive}
	case RuleOneHot:
		levels := sortedLabels(levelSet)
		if enc.DropFirst && len(levels) > 0 {
			levels = levels[1:]
		}
		p.levels = levels
		p.names = make([]string, len(levels))
		for i, l := range levels {
			p.names[i] = levelColumn(enc.Column, l)
		}
	default:
		return nil, &EncodingError{Column: enc.Column, Row: -1, Value: string(enc.Rule), Reason: "unknown encoding rule"}
	}
	return p, nil
}

func levelColumn(column, label string) string {
	if label == "" {
		return column
	}
	return column + "_" + label
}

func sortedLabels(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
