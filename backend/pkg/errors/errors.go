package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeRepository represents graph database errors
	ErrorTypeRepository ErrorType = "repository"
	// ErrorTypeNotFound represents missing-entity errors
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation represents caller input errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeEmbedding represents embedding model errors
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeSearch represents search/traversal errors
	ErrorTypeSearch ErrorType = "search"
	// ErrorTypeAnalysis represents LLM analysis errors
	ErrorTypeAnalysis ErrorType = "analysis"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Repository Errors

// ErrRepositoryConnectionFailed is returned when the Neo4j connection fails
type ErrRepositoryConnectionFailed struct {
	*BaseError
	URI string
}

func NewRepositoryConnectionFailed(uri string, err error) *ErrRepositoryConnectionFailed {
	return &ErrRepositoryConnectionFailed{
		BaseError: NewBaseError(ErrorTypeRepository, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrRepositoryQueryFailed is returned when a graph query fails
type ErrRepositoryQueryFailed struct {
	*BaseError
	Operation string
}

func NewRepositoryQueryFailed(operation string, err error) *ErrRepositoryQueryFailed {
	return &ErrRepositoryQueryFailed{
		BaseError: NewBaseError(ErrorTypeRepository, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// NotFound Errors

// ErrEntityNotFound is returned when a catalog entity cannot be found by id
type ErrEntityNotFound struct {
	*BaseError
	Kind string
	ID   string
}

func NewEntityNotFound(kind, id string) *ErrEntityNotFound {
	return &ErrEntityNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, id), nil),
		Kind:      kind,
		ID:        id,
	}
}

// Validation Errors

// ErrInvalidEntityKind is returned when the caller supplies an unknown entity kind
type ErrInvalidEntityKind struct {
	*BaseError
	Kind string
}

func NewInvalidEntityKind(kind string) *ErrInvalidEntityKind {
	return &ErrInvalidEntityKind{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid entity kind: %s", kind), nil),
		Kind:      kind,
	}
}

// ErrValidationFailed is returned for any other caller input problem
type ErrValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidationFailed(field, reason string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Embedding Errors

// ErrEmbeddingFailed is returned when embedding generation fails after retries
type ErrEmbeddingFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewEmbeddingFailed(model string, attempts int, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding generation failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// ErrEmbeddingUnsupported is returned when an entity kind cannot be embedded
type ErrEmbeddingUnsupported struct {
	*BaseError
	Kind string
}

func NewEmbeddingUnsupported(kind string) *ErrEmbeddingUnsupported {
	return &ErrEmbeddingUnsupported{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("entity kind does not support embeddings: %s", kind), nil),
		Kind:      kind,
	}
}

// Search Errors

// ErrSearchFailed aggregates repository/lookup failures during search
type ErrSearchFailed struct {
	*BaseError
	Query string
}

func NewSearchFailed(query string, err error) *ErrSearchFailed {
	return &ErrSearchFailed{
		BaseError: NewBaseError(ErrorTypeSearch, "search failed", err),
		Query:     query,
	}
}

// ErrRelatedLookupFailed is returned when a related-entity traversal fails
type ErrRelatedLookupFailed struct {
	*BaseError
	Kind string
	ID   string
}

func NewRelatedLookupFailed(kind, id string, err error) *ErrRelatedLookupFailed {
	return &ErrRelatedLookupFailed{
		BaseError: NewBaseError(ErrorTypeSearch, fmt.Sprintf("failed to find related entities for %s %s", kind, id), err),
		Kind:      kind,
		ID:        id,
	}
}

// Analysis Errors

// ErrAnalysisUnavailable is returned when the analysis layer has no LLM configured
var ErrAnalysisUnavailable = NewBaseError(ErrorTypeAnalysis, "analysis layer not configured", nil)

// ErrAnalysisFailed is returned when an LLM analysis run fails
type ErrAnalysisFailed struct {
	*BaseError
	Operation string
	Model     string
}

func NewAnalysisFailed(operation, model string, err error) *ErrAnalysisFailed {
	return &ErrAnalysisFailed{
		BaseError: NewBaseError(ErrorTypeAnalysis, fmt.Sprintf("analysis failed: %s", operation), err),
		Operation: operation,
		Model:     model,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// errorType is satisfied by BaseError and, via embedding, every typed error.
func (e *BaseError) errorType() ErrorType {
	return e.Type
}

type typedError interface {
	errorType() ErrorType
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(typedError); ok {
			return typed.errorType() == errType
		}
		wrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = wrapper.Unwrap()
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Caller mistakes never become right on retry
	if IsErrorType(err, ErrorTypeValidation) || IsErrorType(err, ErrorTypeNotFound) {
		return false
	}
	// Model and database hiccups usually are transient
	if IsErrorType(err, ErrorTypeEmbedding) || IsErrorType(err, ErrorTypeRepository) {
		return true
	}
	return false
}
