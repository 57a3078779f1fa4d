package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsErrorType(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"base error", NewBaseError(ErrorTypeSearch, "failed", nil), ErrorTypeSearch, true},
		{"base error wrong type", NewBaseError(ErrorTypeSearch, "failed", nil), ErrorTypeValidation, false},
		{"entity not found", NewEntityNotFound("rule", "R-1"), ErrorTypeNotFound, true},
		{"invalid kind", NewInvalidEntityKind("widget"), ErrorTypeValidation, true},
		{"embedding failed", NewEmbeddingFailed("model", 3, errors.New("boom")), ErrorTypeEmbedding, true},
		{"query failed", NewRepositoryQueryFailed("CreateRule", errors.New("boom")), ErrorTypeRepository, true},
		{"plain error", errors.New("boom"), ErrorTypeRepository, false},
		{"nil", nil, ErrorTypeRepository, false},
		{"wrapped typed error", fmt.Errorf("context: %w", NewEntityNotFound("domain", "DOM-1")), ErrorTypeNotFound, true},
	}

	for _, tc := range cases {
		if got := IsErrorType(tc.err, tc.errType); got != tc.want {
			t.Errorf("%s: IsErrorType = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(NewInvalidEntityKind("widget")) {
		t.Error("Validation errors must not be retryable")
	}
	if IsRetryable(NewEntityNotFound("rule", "R-1")) {
		t.Error("Not-found errors must not be retryable")
	}
	if !IsRetryable(NewEmbeddingFailed("model", 3, errors.New("boom"))) {
		t.Error("Embedding errors should be retryable")
	}
	if !IsRetryable(NewRepositoryQueryFailed("GetRule", errors.New("boom"))) {
		t.Error("Repository errors should be retryable")
	}
	if IsRetryable(errors.New("boom")) {
		t.Error("Unclassified errors should not be retryable")
	}
}

func TestErrorMessageIncludesWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewRepositoryConnectionFailed("bolt://localhost:7687", inner)
	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to be reachable via errors.Is")
	}
	msg := err.Error()
	if msg == "" || msg == inner.Error() {
		t.Errorf("Unexpected message: %q", msg)
	}
}
