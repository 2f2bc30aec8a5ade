package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrParse              = errors.New("malformed document")
	ErrCapacity           = errors.New("store capacity exceeded")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fe := range err.Fields {
		msgs = append(msgs, fe.Field+": "+fe.Error)
	}
	return strings.Join(msgs, "; ")
}

func (err ValidationError) Unwrap() error { return err.Err }

// Field returns the message reported for fld, if any.
func (err ValidationError) Field(fld string) (string, bool) {
	for _, fe := range err.Fields {
		if fe.Field == fld {
			return fe.Error, true
		}
	}
	return "", false
}

// DuplicateKeyError is raised when a unique field of Kind already holds Value.
type DuplicateKeyError struct {
	Kind  string
	Field string
	Value string
}

func (err DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", err.Kind, err.Field, err.Value)
}

func (err DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// ParseError reports a structurally invalid upload document.
type ParseError struct {
	Doc string // grades, schedules, configuration...
	Err error
}

func NewParseError(doc string, err error) error {
	return &ParseError{Doc: doc, Err: err}
}

func (err ParseError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("%s: %s", err.Doc, ErrParse)
	}
	return fmt.Sprintf("%s: %s: %s", err.Doc, ErrParse, err.Err)
}

func (err ParseError) Is(target error) bool { return target == ErrParse }

func (err ParseError) Unwrap() error { return err.Err }

// IsValidationError reports whether err (or its cause) is a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
