package mediator

import (
	apperrors "github.com/vovakirdan/towerdefense/internal/errors"
)

// Result is the single outcome of a dispatch. Domain failures travel here
// instead of as Go errors so callers can branch on Success.
type Result[T any] struct {
	Success bool           `json:"success"`
	Code    apperrors.Code `json:"code,omitempty"`
	Error   string         `json:"error,omitempty"`
	Data    T              `json:"data"`
}

// OK returns a successful result carrying data.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail returns a failed result with a code and message.
func Fail[T any](code apperrors.Code, message string) Result[T] {
	if message == "" {
		message = string(code)
	}
	return Result[T]{Code: code, Error: message}
}

// FailWith returns a failed result carrying partial data, such as the
// balance left after a rejected spend.
func FailWith[T any](code apperrors.Code, message string, data T) Result[T] {
	r := Fail[T](code, message)
	r.Data = data
	return r
}

// FromError converts a domain error into a failed result.
// Errors without a code are reported as handler faults.
func FromError[T any](err error) Result[T] {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		code = apperrors.CodeHandlerFault
	}
	return Fail[T](code, err.Error())
}

// Err returns the failure as a domain error, or nil on success.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return apperrors.New(r.Code, r.Error)
}
