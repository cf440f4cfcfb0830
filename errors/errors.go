// Package errors provides the validator's structured error types:
// city-scoped ValidationError values and the CriticalValidationError that
// aborts extraction for a single city (spec §7).
package errors

import (
	"fmt"
	"strings"

	"github.com/transit-tools/subway-validator/types"
)

// ValidationError is a single validation finding, enriched with the OSM
// element it refers to and actionable suggestions, the way the teacher's
// ValidationError enriches an XML file/line with suggestions.
type ValidationError struct {
	// Code is a short machine-readable identifier, e.g. "STATION_COUNT_MISMATCH".
	Code string
	// Message is the primary, human-readable message.
	Message string
	// Details adds context beyond Message.
	Details string
	// City is the name of the city this finding belongs to.
	City string
	// ElementType/ElementID/ElementName identify the OSM element involved, if any.
	ElementType string
	ElementID   int64
	ElementName string
	// Severity is the finding's severity.
	Severity types.Severity
	// Suggestions are actionable fixes for the underlying OSM data.
	Suggestions []string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.City != "" {
		parts = append(parts, e.City)
	}
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	parts = append(parts, e.Message)
	if e.ElementType != "" {
		ref := fmt.Sprintf("(%s %d", e.ElementType, e.ElementID)
		if e.ElementName != "" {
			ref += fmt.Sprintf(", %q", e.ElementName)
		}
		ref += ")"
		parts = append(parts, ref)
	}
	if e.Details != "" {
		parts = append(parts, fmt.Sprintf("Details: %s", e.Details))
	}
	return strings.Join(parts, " - ")
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a ValidationError with the given code and message.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// WithElement attaches the OSM element the finding refers to.
func (e *ValidationError) WithElement(elementType string, id int64, name string) *ValidationError {
	e.ElementType = elementType
	e.ElementID = id
	e.ElementName = name
	return e
}

// WithCity attaches the owning city's name.
func (e *ValidationError) WithCity(city string) *ValidationError {
	e.City = city
	return e
}

// WithSeverity sets the severity level.
func (e *ValidationError) WithSeverity(severity types.Severity) *ValidationError {
	e.Severity = severity
	return e
}

// WithDetails adds detail text.
func (e *ValidationError) WithDetails(details string) *ValidationError {
	e.Details = details
	return e
}

// WithSuggestions appends actionable suggestions.
func (e *ValidationError) WithSuggestions(suggestions ...string) *ValidationError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithCause sets the underlying cause.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.Cause = cause
	return e
}

// CriticalValidationError describes a failure that stops processing of
// one city. The model package records such conditions (e.g. a route
// relation referencing a stop/platform member that is missing from the
// dataset) through City.CriticalError instead of this type; the
// orchestrator builds one when processing a city panics and passes its
// message to City.CriticalError, which records a CRITICAL finding
// (grounded on subways/types.py::CriticalValidationError).
type CriticalValidationError struct {
	Message string
}

func (e *CriticalValidationError) Error() string {
	return e.Message
}

// NewCriticalValidationError builds a CriticalValidationError with a
// formatted message.
func NewCriticalValidationError(format string, args ...interface{}) *CriticalValidationError {
	return &CriticalValidationError{Message: fmt.Sprintf(format, args...)}
}
