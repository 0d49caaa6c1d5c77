package app

import (
	"errors"
	"fmt"
)

// ErrorCode is the analysis error taxonomy surfaced to callers.
type ErrorCode string

const (
	ErrUnparseableQuestion ErrorCode = "UNPARSEABLE_QUESTION"
	ErrInsufficientData    ErrorCode = "INSUFFICIENT_DATA"
	ErrInvalidArgument     ErrorCode = "INVALID_ARGUMENT"
	ErrIncomparableWindows ErrorCode = "INCOMPARABLE_WINDOWS"
	ErrStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
	ErrStoreQueryRejected  ErrorCode = "STORE_QUERY_REJECTED"
)

type AnalysisError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewError builds an AnalysisError with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *AnalysisError {
	return &AnalysisError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a code to an underlying failure.
func WrapError(code ErrorCode, err error, msg string) *AnalysisError {
	return &AnalysisError{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the first AnalysisError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
