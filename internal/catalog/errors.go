package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrMalformedID is returned when an identifier is not in the store's native format.
var ErrMalformedID = errors.New("malformed identifier")

// ErrDuplicateName is returned by a Repository when a vehicle name is already taken.
var ErrDuplicateName = errors.New("vehicle name already exists")

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationError is returned when a record cannot be persisted because one
// or more fields are invalid. Nothing is written when it is returned.
type ValidationError struct {
	errs *multierror.Error
}

func newValidationError(errs *multierror.Error) error {
	if errs.ErrorOrNil() == nil {
		return nil
	}
	return &ValidationError{errs: errs}
}

func validationFailure(field, message string) error {
	return newValidationError(multierror.Append(nil, &FieldError{Field: field, Message: message}))
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.errs.Errors))
	for _, err := range e.errs.Errors {
		msgs = append(msgs, err.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.errs
}

// Fields maps each invalid field to its first message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.errs.Errors))
	for _, err := range e.errs.Errors {
		var fe *FieldError
		if errors.As(err, &fe) {
			if _, seen := fields[fe.Field]; !seen {
				fields[fe.Field] = fe.Message
			}
		}
	}
	return fields
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
