package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed request argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSchemaViolation signals a table that lacks required columns.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrDataUnavailable signals that a reference dataset could not be read.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrParseFailure signals a document that could not be parsed.
	ErrParseFailure = errors.New("parse failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// SchemaViolationError wraps ErrSchemaViolation with the names of the missing columns.
// It also matches ErrInvalidInput.
type SchemaViolationError struct {
	Missing []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s: missing columns %s", ErrSchemaViolation.Error(), strings.Join(e.Missing, ", "))
}

func (e *SchemaViolationError) Unwrap() []error { return []error{ErrSchemaViolation, ErrInvalidInput} }

// NewSchemaViolation creates a schema violation error.
func NewSchemaViolation(missing []string) error {
	return &SchemaViolationError{Missing: missing}
}
