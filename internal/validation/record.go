// =============================================================================
// Sales Aggregator - Record Validator
// =============================================================================
//
// This module validates the raw lines of one record file and turns them into
// a ParsedRecord.
//
// VALIDATION ORDER (terminal on the first failure):
//   1. Line count equals the number of dimensions plus one
//                                         -> InvalidRecordFormat
//   2. Each code line exists in its dimension's table, in dimension order
//                                         -> UnknownEntityCode
//   3. The last line is one or more ASCII digits and nothing else
//                                         -> UnexpectedError
//   4. The amount is parsed
//
// A record may break several rules at once; the reported error is always the
// first rule in this order. A malformed amount reports only the generic
// message.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"

	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/shopspring/decimal"
)

// amountPattern matches an unsigned decimal integer with no padding.
var amountPattern = regexp.MustCompile(`^[0-9]+$`)

// =============================================================================
// TABLE BINDING
// =============================================================================

// CodeTable pairs a dimension with the table its codes are checked against.
type CodeTable struct {
	Dimension types.Dimension
	Table     *types.EntityTable
}

// =============================================================================
// RECORD VALIDATION
// =============================================================================

// ValidateRecord validates the lines of the record file fileName.
//
// PARAMETERS:
//   - fileName: The base name used in error messages.
//   - lines: The file's lines without terminators.
//   - expectedLineCount: len(tables) + 1.
//   - tables: One CodeTable per dimension, in record field order.
//
// RETURNS:
//   - The ParsedRecord on success.
//   - An *apperr.Error describing the first violated rule.
//
// ValidateRecord has no side effects; calling it twice with the same input
// yields the same result.
func ValidateRecord(fileName string, lines []string, expectedLineCount int, tables []CodeTable) (types.ParsedRecord, error) {
	// =========================================================================
	// STEP 1: LINE COUNT
	// =========================================================================

	if len(lines) != expectedLineCount {
		return types.ParsedRecord{}, apperr.BadRecord(fileName)
	}
	if expectedLineCount != len(tables)+1 {
		return types.ParsedRecord{}, apperr.Unexpected(
			fmt.Errorf("expected %d lines for %d dimensions", expectedLineCount, len(tables)))
	}

	// =========================================================================
	// STEP 2: REFERENTIAL CHECKS
	// =========================================================================

	codes := make([]types.EntityCode, len(tables))
	for i, ct := range tables {
		code := types.EntityCode(lines[i])
		if ct.Table == nil || !ct.Table.Has(code) {
			return types.ParsedRecord{}, apperr.UnknownCode(fileName, ct.Dimension.Label)
		}
		codes[i] = code
	}

	// =========================================================================
	// STEP 3: NUMERIC CHECK
	// =========================================================================

	raw := lines[len(lines)-1]
	if !amountPattern.MatchString(raw) {
		return types.ParsedRecord{}, apperr.Unexpected(fmt.Errorf("%s: amount is not a decimal integer", fileName))
	}

	// =========================================================================
	// STEP 4: PARSE
	// =========================================================================

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return types.ParsedRecord{}, apperr.Unexpected(fmt.Errorf("%s: %w", fileName, err))
	}

	return types.ParsedRecord{Codes: codes, Amount: amount}, nil
}
