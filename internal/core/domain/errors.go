package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCampaignNotFound is returned when no campaign has the requested id.
var ErrCampaignNotFound = errors.New("campaign not found")

// ValidationError carries per-field messages for rejected input. Field
// names match the JSON wire names.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field already has a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no field was rejected.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e when it holds messages and nil otherwise, so callers can
// return it directly as an error.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// RateErrorKind classifies why the exchange-rate lookup failed.
type RateErrorKind string

const (
	RateErrorTimeout   RateErrorKind = "timeout"
	RateErrorTransport RateErrorKind = "transport"
	RateErrorStatus    RateErrorKind = "status"
	RateErrorParse     RateErrorKind = "parse"
)

// RateError is returned when exchange rates could not be fetched at all.
// Missing individual currencies are not errors; they fall back to static
// rates instead.
type RateError struct {
	Kind RateErrorKind
	Err  error
}

func (e *RateError) Error() string {
	return e.Err.Error()
}

func (e *RateError) Unwrap() error {
	return e.Err
}
