package dataset

import "fmt"

// SchemaError indicates an expected column is absent or the column layout is
// inconsistent. Row is -1 when the problem is not tied to one record.
type SchemaError struct {
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("schema error: column %q (row %d): %s", e.Column, e.Row+1, e.Reason)
	}
	if e.Column == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
}

// EncodingError indicates a cell that cannot be encoded as requested, such as a
// label outside the expected set or a text value where a number is required.
type EncodingError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("encoding error: column %q (row %d, value %q): %s", e.Column, e.Row+1, e.Value, e.Reason)
	}
	return fmt.Sprintf("encoding error: column %q (value %q): %s", e.Column, e.Value, e.Reason)
}
