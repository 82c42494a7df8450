package models

import (
	"errors"
	"fmt"
	"strings"
)

// Entity names used in error messages and change events.
const (
	EntityAsset         = "Asset"
	EntityTransaction   = "Transaction"
	EntityRetention     = "Retention"
	EntityExchangeRate  = "ExchangeRate"
	EntityConfiguration = "Configuration"
)

// NotFoundError is returned when no row matches the requested key.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// NewNotFound builds a NotFoundError for entity and key.
func NewNotFound(entity string, key interface{}) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a failure for field.
func (e *ValidationError) Add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns e when at least one field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError is a shortcut for a single failing field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	v := &ValidationError{}
	v.Add(field, format, args...)
	return v
}

// Conflict reasons reported by the store.
const (
	ConflictDuplicate     = "duplicate key"
	ConflictInUse         = "still referenced by other records"
	ConflictMissingParent = "referenced record does not exist"
)

// ConflictError reports a uniqueness or referential-integrity violation.
type ConflictError struct {
	Entity string
	Reason string
	Err    error
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Entity + " conflict: " + e.Reason
	}
	if e.Err != nil {
		return e.Entity + " conflict: " + e.Err.Error()
	}
	return e.Entity + " conflict"
}

func (e *ConflictError) Unwrap() error { return e.Err }

// StorageError means the store could not complete the operation. Any unit of
// work has been rolled back by the time it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
