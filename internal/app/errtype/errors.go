package errtype

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound represents the error for the cases when some entity is not found.
	ErrNotFound = errors.New("not found")
	// ErrBadInput represents the error for the cases when the user input is invalid.
	ErrBadInput = errors.New("bad input")
)

// FieldError describes a single invalid field of the user input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified error with a message that is safe to show to the API client.
type Error struct {
	Kind   error
	Msg    string
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Fields)
}

// Unwrap makes errors.Is match the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound creates a not found error for the specific entity, e.g. NotFound("Build").
func NotFound(entity string) error {
	return &Error{Kind: ErrNotFound, Msg: entity + " not found"}
}

// BadInput creates a bad input error with the optional field details.
func BadInput(msg string, fields ...FieldError) error {
	return &Error{Kind: ErrBadInput, Msg: msg, Fields: fields}
}
