package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

// APIError is an error carrying a machine-readable code, rendered as {"error": Code, "message": Message}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func NewAPIError(status int, code, msg string) error {
	return &APIError{Status: status, Code: code, Message: msg}
}

func (err APIError) Error() string {
	return err.Code + ": " + err.Message
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
