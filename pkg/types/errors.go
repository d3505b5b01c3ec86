package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed store call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUniqueness
	KindReferential
	KindRequiredField
	KindRange
)

// Store failure categories. A *StoreError matches the sentinel of its kind
// with errors.Is.
var (
	ErrUniqueness    = errors.New("uniqueness violation")
	ErrReferential   = errors.New("referential integrity violation")
	ErrRequiredField = errors.New("required field cannot be empty")
	ErrRange         = errors.New("value out of range")
	ErrUnknownStore  = errors.New("unknown store failure")
)

// Sentinel returns the category error for the kind.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindUniqueness:
		return ErrUniqueness
	case KindReferential:
		return ErrReferential
	case KindRequiredField:
		return ErrRequiredField
	case KindRange:
		return ErrRange
	default:
		return ErrUnknownStore
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindUniqueness:
		return "uniqueness"
	case KindReferential:
		return "referential"
	case KindRequiredField:
		return "required_field"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// StoreError is a store call failure tagged with its category.
type StoreError struct {
	Kind  ErrorKind
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Table, e.Kind.Sentinel(), e.Err)
}

// Unwrap exposes both the category sentinel and the driver error.
func (e *StoreError) Unwrap() []error {
	return []error{e.Kind.Sentinel(), e.Err}
}

// User-facing messages.
const (
	msgUniqueness    = "A record with this value already exists."
	msgReferential   = "The value refers to a record that does not exist."
	msgRequiredField = "A required field cannot be empty."
	msgRange         = "The value is out of range."
	msgUnknown       = "The database rejected the change."
	msgMissingParent = "Populate the parent tables first: every referenced table needs at least one row."
	msgNotFound      = "The record no longer exists."
	msgReadOnly      = "This column cannot be edited."
	msgDisabled      = "This action is not available for the table."
	msgInvalidData   = "The value is not valid for this column."
)

// UserMessage translates an error into a message for the user. Store driver
// text is never included; callers log the full error separately.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingParent):
		return msgMissingParent
	case errors.Is(err, ErrUniqueness):
		return msgUniqueness
	case errors.Is(err, ErrReferential):
		return msgReferential
	case errors.Is(err, ErrRequiredField):
		return msgRequiredField
	case errors.Is(err, ErrRange):
		return msgRange
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrReadOnlyColumn):
		return msgReadOnly
	case errors.Is(err, ErrActionDisabled), errors.Is(err, ErrUnsupported):
		return msgDisabled
	case errors.Is(err, ErrInvalidData), errors.Is(err, ErrUnknownColumn):
		return msgInvalidData
	default:
		return msgUnknown
	}
}
