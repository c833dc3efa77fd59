package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrAlreadyConverted = errors.New("lead already converted")
)

// ValidationError is reported inline to the caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError is surfaced for manual resolution: a stale version, a reused
// request id, or a duplicate unique value.
type ConflictError struct {
	Message string
	Cause   error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ForbiddenError means the caller is authenticated but may not do this.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// AuthError forces the client to log in again.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

// AlreadyConvertedError is returned when a lead has already become a customer.
type AlreadyConvertedError struct {
	LeadID     uint
	CustomerID *uint
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("lead %d has already been converted to a customer", e.LeadID)
}

func (e *AlreadyConvertedError) Unwrap() error { return ErrAlreadyConverted }

// notFoundOr maps gorm's missing-record error to NotFoundError and passes
// anything else through.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}

// isUniqueViolation works with both PostgreSQL and SQLite error texts.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
