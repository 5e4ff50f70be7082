package member

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrNotFound       = errors.New("member not found")
	ErrDuplicatePhone = errors.New("phone number already registered")
	ErrValidation     = errors.New("validation failed")
)

// ValidationError carries every rule violation found for one input, in
// the order the rules were checked.
type ValidationError struct {
	Messages []string
}

// NewValidationError returns a ValidationError holding msgs.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Messages, "; ")
}

// Is makes errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationMessages extracts the messages from err when it wraps a
// ValidationError, or returns nil.
func ValidationMessages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	return nil
}
