package models

// Format is a partial cell format; nil or empty fields leave the existing
// style untouched.
type Format struct {
	NumberFormat string
	Horizontal   string
	Vertical     string
	Wrap         *bool
	Bold         *bool
	FontColor    string
	Background   string
}

// ConditionalRule is a font-colour rule applied to a range. Criteria is a
// comparison operator ("<", ">=", ...) for cell rules or empty when Formula
// holds an expression rule.
type ConditionalRule struct {
	Criteria   string `json:"criteria,omitempty"`
	Value      string `json:"value,omitempty"`
	Formula    string `json:"formula,omitempty"`
	FontColor  string `json:"font_color,omitempty"`
	StopIfTrue bool   `json:"stop_if_true,omitempty"`
}

// ConditionalFormat is the list of rules scoped to one range reference.
type ConditionalFormat struct {
	Ref   string            `json:"ref"`
	Rules []ConditionalRule `json:"rules"`
}

// Validation describes a data-validation rule.
type Validation struct {
	// Min enables a "decimal greater than or equal to Min" rule.
	Min *float64
	// List restricts the cell to the given values.
	List []string
	// AllowInvalid shows a warning instead of rejecting invalid input.
	AllowInvalid bool
	Title        string
	Message      string
}
