package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrInvalidAction = errors.New("invalid action")
	ErrMissingField  = errors.New("missing field")
	ErrTypeMismatch  = errors.New("type mismatch")
)

// InvalidActionError reports an action outside create, read, update and delete.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: must be one of create, read, update, delete", e.Action)
}

func (e *InvalidActionError) Unwrap() error { return ErrInvalidAction }

// MissingFieldError reports a mandatory key absent from a JSON update.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing mandatory field %q", e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// TypeMismatchError reports a JSON value of the wrong kind for its field.
type TypeMismatchError struct {
	Field    string
	Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: expected %s", e.Field, e.Expected)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// InvalidMetaKeyError lists metadata keys that cannot be used as XML element names.
type InvalidMetaKeyError struct {
	Keys []string
}

func (e *InvalidMetaKeyError) Error() string {
	if len(e.Keys) == 0 {
		return "no invalid metadata keys"
	}
	quoted := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return "metadata keys are not valid XML element names: " + strings.Join(quoted, ", ")
}
