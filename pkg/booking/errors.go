package booking

import (
	"errors"
	"fmt"
)

// Error kinds returned by the booking service. Every failure the service reports
// unwraps to exactly one of these, so callers branch with errors.Is.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrRoomOccupied         = errors.New("room occupied")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}

// ErrorKind reports which error kind err unwraps to, or nil when it matches none.
func ErrorKind(err error) error {
	for _, kind := range []error{
		ErrInvalidInput,
		ErrInvalidDateRange,
		ErrNotFound,
		ErrAlreadyExists,
		ErrInsufficientBalance,
		ErrRoomOccupied,
		ErrInvalidServiceConfig,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
