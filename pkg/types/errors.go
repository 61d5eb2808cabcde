package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorised error code.
type ErrorCode string

// Error codes. The first letter selects the category.
const (
	// P01xx: structural parse errors
	ErrUnbalancedParens  ErrorCode = "P0101"
	ErrStringNotClosed   ErrorCode = "P0102"
	ErrEmptyGroup        ErrorCode = "P0103"
	ErrUnknownFunction   ErrorCode = "P0104"
	ErrUnknownConstant   ErrorCode = "P0105"
	ErrArityMismatch     ErrorCode = "P0106"
	ErrSyntax            ErrorCode = "P0107"
	ErrMisplacedSep      ErrorCode = "P0108"
	ErrEmptyExpression   ErrorCode = "P0109"
	ErrInvalidLiteral    ErrorCode = "P0110"
	ErrInvalidSymbolConf ErrorCode = "P0111"

	// L01xx: logical type errors
	ErrNotLogicallyValid ErrorCode = "L0101"
	ErrParameterConflict ErrorCode = "L0102"
	ErrUnresolvedParam   ErrorCode = "L0103"

	// E01xx: engine errors
	ErrFunctionNotFound ErrorCode = "E0101"
	ErrInvariant        ErrorCode = "E0102"

	// R01xx: runtime errors
	ErrDivisionByZero    ErrorCode = "R0101"
	ErrParameterType     ErrorCode = "R0102"
	ErrMissingParameter  ErrorCode = "R0103"
	ErrArgumentCount     ErrorCode = "R0104"
	ErrThunk             ErrorCode = "R0105"
	ErrIntegerOverflow   ErrorCode = "R0106"
	ErrInvalidConversion ErrorCode = "R0107"
	ErrDomain            ErrorCode = "R0108"
)

// Category groups error codes by who is at fault.
type Category string

// Error categories.
const (
	CategoryStructural Category = "structural"
	CategoryLogical    Category = "logical"
	CategoryEngine     Category = "engine"
	CategoryRuntime    Category = "runtime"
	CategoryUnknown    Category = "unknown"
)

// Category returns the category encoded in the code prefix.
func (c ErrorCode) Category() Category {
	if c == "" {
		return CategoryUnknown
	}
	switch c[0] {
	case 'P':
		return CategoryStructural
	case 'L':
		return CategoryLogical
	case 'E':
		return CategoryEngine
	case 'R':
		return CategoryRuntime
	}
	return CategoryUnknown
}

// Error represents a structured, categorised error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new error. Use position -1 when no source offset applies.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a new error without position using a format string.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...), -1)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("%s (near %q)", msg, e.Token)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Category returns the category of the error code.
func (e *Error) Category() Category {
	return e.Code.Category()
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsCategory reports whether err carries an *Error of category c.
func IsCategory(err error, c Category) bool {
	e, ok := AsError(err)
	return ok && e.Category() == c
}
