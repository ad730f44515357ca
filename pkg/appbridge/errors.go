package appbridge

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an AppError.
type ErrorCode string

const (
	CodeUnauthenticated   ErrorCode = "unauthenticated"
	CodeForbidden         ErrorCode = "forbidden"
	CodeMisconfigured     ErrorCode = "misconfigured"
	CodeUnsupported       ErrorCode = "unsupported"
	CodeRateLimit         ErrorCode = "rate-limit"
	CodeTimeout           ErrorCode = "timeout"
	CodeUnavailable       ErrorCode = "unavailable"
	CodeInternalError     ErrorCode = "internal-error"
	CodeMalformedResponse ErrorCode = "malformed-response"
	CodeOther             ErrorCode = "other"
	CodeCompleteWorkflow  ErrorCode = "complete-workflow"
	CodeCompleteParent    ErrorCode = "complete-parent"
)

// AppError is the error connectors return to the runtime.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Errorf builds an AppError with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *AppError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches another *AppError with the same code, so callers can write
// errors.Is(err, &appbridge.AppError{Code: appbridge.CodeUnsupported}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first AppError in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
