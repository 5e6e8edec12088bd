package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
	"equiptrack/internal/validate"
)

var (
	ErrNotFound              = errors.New("record not found")
	ErrValidation            = errors.New("invalid input")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrArchivedReference     = errors.New("equipment or store is archived")
	ErrInvalidReturnQuantity = errors.New("invalid return quantity")
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// check runs the struct validator over an input DTO.
func check(in any) error {
	if errs := validate.Struct(in); errs != nil {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// lookup maps a missing row to ErrNotFound.
func lookup(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// guard maps a failed conditional update to the domain error it stands for.
func guard(err, domainErr error) error {
	if errors.Is(err, repos.ErrGuard) {
		return domainErr
	}
	return err
}

// Rejected reports whether err is an expected business rejection rather than a fault.
func Rejected(err error) bool {
	for _, e := range []error{ErrNotFound, ErrValidation, ErrInsufficientStock, ErrArchivedReference, ErrInvalidReturnQuantity, ErrBadCreds, ErrInactive} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case Rejected(err):
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
