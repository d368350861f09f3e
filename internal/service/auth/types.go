package auth

import "errors"

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrorCodeInternal.
func CodeOf(err error) ErrorCode {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ErrorCodeInternal
}

// TokenIssuer mints the connection token returned by Authenticate.
type TokenIssuer interface {
	CreateToken(code string) (string, error)
}

type ConnectResult struct {
	Code  string
	Token string
}
