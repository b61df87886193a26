package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrSelfDelete          = errors.New("cannot delete your own account")
)

// InvalidParameterError carries the caller-facing message for a rejected
// request parameter. Detected before any store call.
type InvalidParameterError struct {
	Message string
}

func (e *InvalidParameterError) Error() string {
	return e.Message
}

func invalidParameterf(format string, args ...any) error {
	return &InvalidParameterError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidParameter reports whether err is a rejected request parameter.
func IsInvalidParameter(err error) bool {
	var target *InvalidParameterError
	return errors.As(err, &target)
}
