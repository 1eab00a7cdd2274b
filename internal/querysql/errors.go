package querysql

import (
	"errors"
	"fmt"
)

// TranslationError reports a semantic problem with a query.
// It carries no source position.
type TranslationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the parameter or variable the error is about, if any.
	Name string
}

// ErrorCode categorizes translation errors.
type ErrorCode string

const (
	// ErrCodeUnboundParameter indicates a $name missing from the parameter map.
	ErrCodeUnboundParameter ErrorCode = "UNBOUND_PARAMETER"

	// ErrCodeInvalidParameter indicates a parameter value of an unusable type.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeUnknownVariable indicates a reference to a variable no clause bound.
	ErrCodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeVariableKind indicates a node variable used as a relationship, or the reverse.
	ErrCodeVariableKind ErrorCode = "VARIABLE_KIND"

	// ErrCodeAlreadyBound indicates an attempt to redeclare a bound variable.
	ErrCodeAlreadyBound ErrorCode = "ALREADY_BOUND"

	// ErrCodeUnsupportedPattern indicates a pattern shape outside the supported set.
	ErrCodeUnsupportedPattern ErrorCode = "UNSUPPORTED_PATTERN"

	// ErrCodeUnsupportedExpression indicates an expression the clause cannot use.
	ErrCodeUnsupportedExpression ErrorCode = "UNSUPPORTED_EXPRESSION"

	// ErrCodeReservedProperty indicates a write to the "id" key, which
	// projections fill with the row id.
	ErrCodeReservedProperty ErrorCode = "RESERVED_PROPERTY"
)

// Error implements the error interface.
func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, name, format string, args ...any) *TranslationError {
	return &TranslationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Name:    name,
	}
}

// IsTranslationError returns true if err is or wraps a *TranslationError.
func IsTranslationError(err error) bool {
	var te *TranslationError
	return errors.As(err, &te)
}

// IsUnboundParameter returns true if err reports a missing parameter.
// Uses errors.As to handle wrapped errors.
func IsUnboundParameter(err error) bool {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Code == ErrCodeUnboundParameter
	}
	return false
}
