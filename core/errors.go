package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError is a rejected value of one input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError groups the field errors of a rejected input.
// Err is the sentinel behind the rejection, if any, and is reachable with errors.Is.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError rejects field with the message of the sentinel err.
func NewFieldError(field string, err error) error {
	return &ValidationError{Err: err, Fields: []FieldError{{Field: field, Error: err.Error()}}}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return strings.Join(err.Lines(), "; ")
}

func (err ValidationError) Unwrap() error { return err.Err }

// FieldMap indexes the messages by field name. A repeated field keeps its first message.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, fe := range err.Fields {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Error
		}
	}
	return m
}

// Lines renders one "field: message" line per field error, in order.
func (err ValidationError) Lines() []string {
	lines := make([]string, 0, len(err.Fields))
	for _, fe := range err.Fields {
		lines = append(lines, fe.Field+": "+fe.Error)
	}
	return lines
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
