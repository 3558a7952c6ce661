// =============================================================================
// Sales Aggregator - Aggregator
// =============================================================================
//
// This module holds the running totals for a run and is the only code allowed
// to change them.
//
// LIMIT:
//   A total may never reach 10^digits (10 digits by default, i.e. the largest
//   allowed total is 9,999,999,999). An addition that would reach the limit
//   fails with AmountOverflow and the run aborts.
//
// ARITHMETIC:
//   Amounts are shopspring decimals so an absurdly long amount string is
//   compared against the limit exactly instead of wrapping a machine integer.
//
// =============================================================================

package aggregator

import (
	"fmt"

	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultDigits is the maximum display width of a total.
const DefaultDigits = 10

// =============================================================================
// RUNNING TOTAL
// =============================================================================

// RunningTotal maps entity codes to their accumulated amount.
type RunningTotal struct {
	totals map[types.EntityCode]decimal.Decimal
	limit  decimal.Decimal
	digits int
}

// NewRunningTotal returns an empty table whose totals must stay below 10^digits.
// A non-positive digits uses DefaultDigits.
func NewRunningTotal(digits int) *RunningTotal {
	if digits <= 0 {
		digits = DefaultDigits
	}
	return &RunningTotal{
		totals: make(map[types.EntityCode]decimal.Decimal),
		limit:  decimal.New(1, int32(digits)),
		digits: digits,
	}
}

// Open registers code with a zero total. An already registered code keeps
// its current total.
func (r *RunningTotal) Open(code types.EntityCode) {
	if _, ok := r.totals[code]; !ok {
		r.totals[code] = decimal.Zero
	}
}

// Get returns the total for code.
func (r *RunningTotal) Get(code types.EntityCode) (decimal.Decimal, bool) {
	total, ok := r.totals[code]
	return total, ok
}

// Len returns the number of registered codes.
func (r *RunningTotal) Len() int {
	return len(r.totals)
}

// Accumulate adds amount to the total for code.
//
// RETURNS:
//   - AmountOverflow if the new total would reach the limit; the stored
//     total is left unchanged.
//   - UnexpectedError if code was never opened or amount is negative.
func (r *RunningTotal) Accumulate(code types.EntityCode, amount decimal.Decimal) error {
	next, err := r.peek(code, amount)
	if err != nil {
		return err
	}
	r.totals[code] = next
	return nil
}

// peek computes the total Accumulate would store without storing it.
func (r *RunningTotal) peek(code types.EntityCode, amount decimal.Decimal) (decimal.Decimal, error) {
	current, ok := r.totals[code]
	if !ok {
		return decimal.Zero, apperr.Unexpected(fmt.Errorf("code %q has no running total", code))
	}
	if amount.IsNegative() {
		return decimal.Zero, apperr.Unexpected(fmt.Errorf("negative amount %s for code %q", amount, code))
	}
	next := current.Add(amount)
	if next.GreaterThanOrEqual(r.limit) {
		return decimal.Zero, apperr.Overflow(r.digits)
	}
	return next, nil
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator folds parsed records into one RunningTotal per dimension.
type Aggregator struct {
	totals []*RunningTotal
}

// New returns an Aggregator over totals, one per dimension in record order.
func New(totals []*RunningTotal) *Aggregator {
	return &Aggregator{totals: totals}
}

// Apply adds the record's amount to each dimension's total for the record's
// code in that dimension. Every dimension is checked before any is updated,
// so a failing record changes nothing.
func (a *Aggregator) Apply(record types.ParsedRecord) error {
	if len(record.Codes) != len(a.totals) {
		return apperr.Unexpected(fmt.Errorf("record has %d codes, want %d", len(record.Codes), len(a.totals)))
	}

	next := make([]decimal.Decimal, len(a.totals))
	for i, table := range a.totals {
		total, err := table.peek(record.Codes[i], record.Amount)
		if err != nil {
			return err
		}
		next[i] = total
	}

	for i, table := range a.totals {
		table.totals[record.Codes[i]] = next[i]
	}
	return nil
}
