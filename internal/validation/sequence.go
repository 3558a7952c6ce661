// =============================================================================
// Sales Aggregator - Sequence Validator
// =============================================================================
//
// Record files are named with an 8-digit, zero-padded sequence number. Before
// any record content is read, the sorted set of sequence numbers must form a
// contiguous run: each key is exactly one more than the previous one.
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/sales-aggregator/internal/apperr"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
)

// StemLength is the number of leading digits that form a sequence key.
const StemLength = 8

// ValidateSequence checks that keys, sorted ascending, step by exactly one.
// Empty and single-element inputs are valid.
func ValidateSequence(keys []types.SequenceKey) error {
	for i := 0; i+1 < len(keys); i++ {
		if keys[i+1]-keys[i] != 1 {
			return apperr.NonSequential(int(keys[i]), int(keys[i+1]))
		}
	}
	return nil
}

// SequenceKeyFromName parses the leading StemLength digits of a record file
// name, e.g. "00000012.rcd" -> 12.
func SequenceKeyFromName(name string) (types.SequenceKey, error) {
	if len(name) < StemLength {
		return 0, apperr.Unexpected(fmt.Errorf("record file name %q is shorter than %d characters", name, StemLength))
	}
	n, err := strconv.Atoi(name[:StemLength])
	if err != nil || n < 0 {
		return 0, apperr.Unexpected(fmt.Errorf("record file name %q has no numeric stem", name))
	}
	return types.SequenceKey(n), nil
}
