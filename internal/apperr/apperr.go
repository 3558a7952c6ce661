// =============================================================================
// Sales Aggregator - Error Taxonomy
// =============================================================================
//
// Every failure in the aggregation pipeline resolves to one of the kinds
// defined here. Each kind carries a fixed, user-facing message; the wrapped
// cause (if any) is kept for logging and never shown to the user.
//
// KINDS:
//   DefinitionFileNotFound   - a definition file is absent
//   InvalidDefinitionFormat  - malformed line or code in a definition file
//   NonSequentialRecordFiles - gap or duplicate in the record-file sequence
//   InvalidRecordFormat      - wrong line count in a record file
//   UnknownEntityCode        - record references a code missing from its table
//   AmountOverflow           - a running total would reach 10^digits
//   UnexpectedError          - malformed amount or any unclassified fault
//   IOFailure                - I/O fault; shown to the user as UnexpectedError
//
// =============================================================================

package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a pipeline failure.
type Kind int

const (
	UnexpectedError Kind = iota
	DefinitionFileNotFound
	InvalidDefinitionFormat
	NonSequentialRecordFiles
	InvalidRecordFormat
	UnknownEntityCode
	AmountOverflow
	IOFailure
)

// String returns a stable code for the kind, suitable for log fields.
func (k Kind) String() string {
	switch k {
	case DefinitionFileNotFound:
		return "DEFINITION_FILE_NOT_FOUND"
	case InvalidDefinitionFormat:
		return "INVALID_DEFINITION_FORMAT"
	case NonSequentialRecordFiles:
		return "NON_SEQUENTIAL_RECORD_FILES"
	case InvalidRecordFormat:
		return "INVALID_RECORD_FORMAT"
	case UnknownEntityCode:
		return "UNKNOWN_ENTITY_CODE"
	case AmountOverflow:
		return "AMOUNT_OVERFLOW"
	case IOFailure:
		return "IO_FAILURE"
	default:
		return "UNEXPECTED_ERROR"
	}
}

// =============================================================================
// USER-FACING MESSAGES
// =============================================================================

const (
	msgUnexpected       = "an unexpected error occurred"
	msgNotExist         = "%s definition file does not exist"
	msgDefinitionFormat = "%s definition file has an invalid format"
	msgNonSequential    = "sales file names are not sequential"
	msgRecordFormat     = "%s has an invalid format"
	msgUnknownCode      = "%s has an invalid %s code"
	msgOverflow         = "total amount exceeded %d digits"
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is the single error type returned by every pipeline component.
type Error struct {
	// Kind is the failure class.
	Kind Kind

	// Subject names what failed: a dimension label for definition errors,
	// a record file name for record errors.
	Subject string

	// Detail qualifies the subject, e.g. the dimension label of an unknown code.
	Detail string

	// Digits is the total width for AmountOverflow messages.
	Digits int

	// Err is the underlying cause, if any. It is logged, never shown.
	Err error
}

// Error implements the error interface. It includes the cause for logs.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.UserMessage(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage())
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the message shown to the end user.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case DefinitionFileNotFound:
		return fmt.Sprintf(msgNotExist, e.Subject)
	case InvalidDefinitionFormat:
		return fmt.Sprintf(msgDefinitionFormat, e.Subject)
	case NonSequentialRecordFiles:
		return msgNonSequential
	case InvalidRecordFormat:
		return fmt.Sprintf(msgRecordFormat, e.Subject)
	case UnknownEntityCode:
		return fmt.Sprintf(msgUnknownCode, e.Subject, e.Detail)
	case AmountOverflow:
		digits := e.Digits
		if digits == 0 {
			digits = 10
		}
		return fmt.Sprintf(msgOverflow, digits)
	default:
		return msgUnexpected
	}
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

func NotFound(label string, err error) *Error {
	return &Error{Kind: DefinitionFileNotFound, Subject: label, Err: err}
}

func BadDefinition(label string) *Error {
	return &Error{Kind: InvalidDefinitionFormat, Subject: label}
}

func NonSequential(prev, next int) *Error {
	return &Error{Kind: NonSequentialRecordFiles, Err: fmt.Errorf("key %d follows %d", next, prev)}
}

func BadRecord(fileName string) *Error {
	return &Error{Kind: InvalidRecordFormat, Subject: fileName}
}

func UnknownCode(fileName, label string) *Error {
	return &Error{Kind: UnknownEntityCode, Subject: fileName, Detail: label}
}

func Overflow(digits int) *Error {
	return &Error{Kind: AmountOverflow, Digits: digits}
}

func Unexpected(err error) *Error {
	return &Error{Kind: UnexpectedError, Err: err}
}

// IO wraps an I/O fault on path. op is a short verb such as "open" or "rename".
func IO(op, path string, err error) *Error {
	return &Error{Kind: IOFailure, Err: fmt.Errorf("%s %s: %w", op, path, err)}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// KindOf returns the kind of err. Errors that are not *Error are UnexpectedError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnexpectedError
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return msgUnexpected
}
