package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/querysql"
	"github.com/roach88/cypherlite/internal/store"
)

// ExecutionError represents a failure after storage was touched.
//
// The transaction has always been rolled back by the time an ExecutionError
// is returned: no statement of the failing query is visible.
type ExecutionError struct {
	// Code identifies the error category.
	Code ExecutionErrorCode

	// Message is a human-readable description.
	Message string

	// Statement is the index of the failing statement, or -1 when the
	// failure happened outside a statement (begin, commit).
	Statement int

	// Err is the underlying storage error.
	Err error
}

// ExecutionErrorCode categorizes execution errors.
type ExecutionErrorCode string

const (
	// ErrCodeReferentialIntegrity indicates a foreign key failure, e.g.
	// deleting a node that still has relationships without DETACH.
	ErrCodeReferentialIntegrity ExecutionErrorCode = "REFERENTIAL_INTEGRITY"

	// ErrCodeConstraintViolation indicates any other storage constraint failure.
	ErrCodeConstraintViolation ExecutionErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeStorage indicates an I/O or driver failure.
	ErrCodeStorage ExecutionErrorCode = "STORAGE"

	// ErrCodeCancelled indicates the context was cancelled or timed out.
	ErrCodeCancelled ExecutionErrorCode = "CANCELLED"

	// ErrCodeInternal indicates a statement list the executor cannot run.
	ErrCodeInternal ExecutionErrorCode = "INTERNAL"
)

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Statement >= 0 {
		return fmt.Sprintf("%s: %s (statement %d)", e.Code, e.Message, e.Statement)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying storage error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsExecutionError returns true if err is or wraps an *ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// IsReferentialIntegrityError returns true for foreign key failures.
func IsReferentialIntegrityError(err error) bool {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeReferentialIntegrity
	}
	return false
}

// storageError classifies a storage failure of statement idx.
func storageError(ctx context.Context, idx int, err error) *ExecutionError {
	ee := &ExecutionError{Statement: idx, Err: err}
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		ee.Code = ErrCodeCancelled
		ee.Message = "query cancelled"
		if ctx.Err() != nil {
			ee.Err = ctx.Err()
		}
	case store.IsForeignKeyViolation(err):
		ee.Code = ErrCodeReferentialIntegrity
		ee.Message = "referential integrity violation: a node with relationships cannot be deleted without DETACH"
	case store.IsConstraintViolation(err):
		ee.Code = ErrCodeConstraintViolation
		ee.Message = fmt.Sprintf("constraint violation: %v", err)
	default:
		ee.Code = ErrCodeStorage
		ee.Message = fmt.Sprintf("storage failure: %v", err)
	}
	return ee
}

func internalError(idx int, format string, args ...any) *ExecutionError {
	return &ExecutionError{
		Code:      ErrCodeInternal,
		Message:   fmt.Sprintf(format, args...),
		Statement: idx,
	}
}

// FailureKind names the pipeline stage a failure came from.
type FailureKind string

const (
	FailureParse       FailureKind = "parse"
	FailureTranslation FailureKind = "translation"
	FailureExecution   FailureKind = "execution"
	FailureInternal    FailureKind = "internal"
)

// Failure is the structured failure surfaced to outer layers (CLI, MCP).
// Position, Line and Column are set only for parse failures.
type Failure struct {
	Kind     FailureKind `json:"kind"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Position *int        `json:"position,omitempty"`
	Line     *int        `json:"line,omitempty"`
	Column   *int        `json:"column,omitempty"`
}

// ParseErrorCode is the Failure code of every parse failure.
const ParseErrorCode = "PARSE_ERROR"

// Describe renders any error returned by Execute as a Failure.
func Describe(err error) Failure {
	var (
		pe *cypher.ParseError
		te *querysql.TranslationError
		ee *ExecutionError
	)
	switch {
	case errors.As(err, &pe):
		pos, line, col := pe.Position, pe.Line, pe.Column
		return Failure{
			Kind:     FailureParse,
			Code:     ParseErrorCode,
			Message:  pe.Message,
			Position: &pos,
			Line:     &line,
			Column:   &col,
		}
	case errors.As(err, &te):
		return Failure{Kind: FailureTranslation, Code: string(te.Code), Message: te.Message}
	case errors.As(err, &ee):
		return Failure{Kind: FailureExecution, Code: string(ee.Code), Message: ee.Message}
	default:
		return Failure{Kind: FailureInternal, Code: string(ErrCodeInternal), Message: err.Error()}
	}
}
