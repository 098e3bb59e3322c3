// Package models defines data structures shared by the ledger grid engine.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Shape is the number of columns in a block, Total column included.
type Shape int

const (
	// TwoColumn is a single movement column followed by Total.
	TwoColumn Shape = 2
	// ThreeColumn is in | out to floor | Total.
	ThreeColumn Shape = 3
	// FourColumn is in | out | out to floor | Total.
	FourColumn Shape = 4
)

func (s Shape) String() string {
	switch s {
	case TwoColumn:
		return "2-column"
	case ThreeColumn:
		return "3-column"
	case FourColumn:
		return "4-column"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Sign is the direction a two-column block moves the running balance.
type Sign int

const (
	// NoSign is used by three and four column blocks.
	NoSign Sign = 0
	Plus   Sign = 1
	Minus  Sign = -1
)

// Operator returns the formula operator for the sign.
func (s Sign) Operator() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// MarshalText renders the sign as "+", "-" or "".
func (s Sign) MarshalText() ([]byte, error) {
	switch s {
	case Plus:
		return []byte("+"), nil
	case Minus:
		return []byte("-"), nil
	}
	return []byte(""), nil
}

// Schema is the classification of one block: its shape and, for two-column
// blocks, its sign.
type Schema struct {
	Shape Shape `json:"shape"`
	Sign  Sign  `json:"sign,omitempty"`
}

// Block is a contiguous run of columns ending with a Total column.
type Block struct {
	// Start is the first column of the block (1-based).
	Start int `json:"start"`
	// Schema is the inferred shape and sign.
	Schema Schema `json:"schema"`
	// Labels are the raw row-2 header texts, left to right.
	Labels []string `json:"labels"`
}

// Size returns the number of columns in the block.
func (b Block) Size() int { return int(b.Schema.Shape) }

// TotalColumn returns the 1-based column of the block's Total.
func (b Block) TotalColumn() int { return b.Start + b.Size() - 1 }

// Kind is the movement type of an appended block.
type Kind string

const (
	KindIn         Kind = "in"
	KindOut        Kind = "out"
	KindOutToFloor Kind = "out to floor"
)

// ErrUnknownKind is returned by ParseKind for anything but the three kinds.
var ErrUnknownKind = errors.New("unknown block kind")

// ParseKind parses a kind case-insensitively, ignoring surrounding spaces.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindIn, KindOut, KindOutToFloor:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q (must be IN, OUT or out to floor)", ErrUnknownKind, s)
}

// Label returns the row-2 header written for a new block of this kind.
func (k Kind) Label() string {
	switch k {
	case KindIn:
		return "IN"
	case KindOut:
		return "OUT"
	}
	return "out to floor"
}

// Sign returns the running-balance sign for the kind.
func (k Kind) Sign() Sign {
	if k == KindIn {
		return Plus
	}
	return Minus
}
