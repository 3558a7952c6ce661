// =============================================================================
// Sales Aggregator - Shared Types
// =============================================================================
//
// This package contains types shared by several modules to avoid import
// cycles. Types defined here are used by:
//   - definition
//   - validation
//   - aggregator
//   - summarywriter
//   - pipeline
//
// =============================================================================

package types

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIMENSIONS
// =============================================================================

// Dimension describes one entity dimension (branch, commodity, ...) of a run.
// Dimensions are ordered: the order is the field order inside a record file.
type Dimension struct {
	// Name is the internal identifier, e.g. "branch".
	Name string

	// Label is the word used in user-facing messages, e.g. "branch".
	Label string

	// DefinitionFile is the file name of the code,name list, e.g. "branch.lst".
	DefinitionFile string

	// SummaryFile is the file name of the per-entity totals, e.g. "branch.out".
	SummaryFile string

	// CodePattern matches a valid EntityCode for this dimension.
	CodePattern *regexp.Regexp
}

// =============================================================================
// ENTITY TABLE
// =============================================================================

// EntityCode identifies an entity within a dimension.
type EntityCode string

// EntityTable maps codes to names, remembering the order codes were first seen.
type EntityTable struct {
	order []EntityCode
	names map[EntityCode]string
}

// NewEntityTable returns an empty table.
func NewEntityTable() *EntityTable {
	return &EntityTable{names: make(map[EntityCode]string)}
}

// Put records code with name. A repeated code keeps its first position and
// takes the new name.
func (t *EntityTable) Put(code EntityCode, name string) {
	if _, ok := t.names[code]; !ok {
		t.order = append(t.order, code)
	}
	t.names[code] = name
}

// Has reports whether code is defined.
func (t *EntityTable) Has(code EntityCode) bool {
	_, ok := t.names[code]
	return ok
}

// Name returns the name for code.
func (t *EntityTable) Name(code EntityCode) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}

// Codes returns the codes in first-seen order. The slice is a copy.
func (t *EntityTable) Codes() []EntityCode {
	codes := make([]EntityCode, len(t.order))
	copy(codes, t.order)
	return codes
}

// Len returns the number of distinct codes.
func (t *EntityTable) Len() int {
	return len(t.order)
}

// =============================================================================
// RECORDS
// =============================================================================

// SequenceKey is the integer value of a record file's 8-digit stem.
type SequenceKey int

// RecordFile is a discovered record file.
type RecordFile struct {
	// Path is the full path to the file.
	Path string

	// Name is the base name, e.g. "00000001.rcd".
	Name string

	// Key is derived from Name.
	Key SequenceKey
}

// ParsedRecord is the validated content of one record file.
type ParsedRecord struct {
	// Codes holds one code per dimension, in dimension order.
	Codes []EntityCode

	// Amount is the non-negative sale amount.
	Amount decimal.Decimal
}
