// Package apperr defines the two recoverable error kinds the core
// services surface to callers: validation failures the caller can
// correct, and references to entities that do not exist. Anything else
// coming out of a service is an infrastructure fault.
package apperr

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

// NotFoundf builds a NotFoundError with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
