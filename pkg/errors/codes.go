package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeNotImplemented  ErrorCode = "COMMON_016"
	ErrCodeConfigInvalid   ErrorCode = "COMMON_017"
	ErrCodeCanceled        ErrorCode = "COMMON_018"
)

// Aliases used at call sites that read better with the short form.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
)

// Chemistry Error Codes
const (
	// ErrCodeInvalidNotation marks a minimal notation graph that violated the
	// tokenizer contract, e.g. an unmappable bond code.
	ErrCodeInvalidNotation ErrorCode = "CHEM_001"

	// ErrCodeMalformedPattern marks a pattern syntax tree with an illegal
	// shape, e.g. excess ring-closure children on one atom.
	ErrCodeMalformedPattern ErrorCode = "CHEM_002"

	// ErrCodeInvalidGraph marks an edit-API call that would break a graph
	// invariant (self bond, foreign atom, duplicate bond).
	ErrCodeInvalidGraph ErrorCode = "CHEM_003"

	// ErrCodeInvalidDocument marks a CLI input document that could not be
	// decoded into the upstream contract types.
	ErrCodeInvalidDocument ErrorCode = "CHEM_004"
)

// ErrorCodeExitStatus maps ErrorCodes to process exit statuses used by the CLI.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeInternal:       70,
	ErrCodeBadRequest:     64,
	ErrCodeValidation:     65,
	ErrCodeSerialization:  65,
	ErrCodeNotImplemented: 69,
	ErrCodeConfigInvalid:  78,
	ErrCodeCanceled:       75,

	ErrCodeInvalidNotation:  65,
	ErrCodeMalformedPattern: 65,
	ErrCodeInvalidGraph:     65,
	ErrCodeInvalidDocument:  66,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeBadRequest:     "bad request",
	ErrCodeValidation:     "validation failed",
	ErrCodeSerialization:  "serialization failed",
	ErrCodeNotImplemented: "not implemented",
	ErrCodeConfigInvalid:  "invalid configuration",
	ErrCodeCanceled:       "operation canceled",

	ErrCodeInvalidNotation:  "invalid notation graph",
	ErrCodeMalformedPattern: "malformed pattern",
	ErrCodeInvalidGraph:     "graph invariant violated",
	ErrCodeInvalidDocument:  "invalid input document",
}

// ExitStatusForCode returns the process exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return 1
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsInputError reports whether the code blames the caller's input rather than
// the toolkit itself.
func IsInputError(code ErrorCode) bool {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidNotation,
		ErrCodeMalformedPattern, ErrCodeInvalidGraph, ErrCodeInvalidDocument:
		return true
	}
	return false
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
