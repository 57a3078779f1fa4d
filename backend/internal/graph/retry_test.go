package graph

import (
	"context"
	"errors"
	"testing"

	pkgerrors "data-catalog/backend/pkg/errors"
)

// withReadRetry never touches the driver itself, so these run without Neo4j.

func TestWithReadRetry_RecoversAfterTransientFailure(t *testing.T) {
	repo := NewRepository(nil, "")

	calls := 0
	err := repo.withReadRetry(context.Background(), "flaky read", func() error {
		calls++
		if calls == 1 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected recovery after one failure, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestWithReadRetry_ExhaustsAttempts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping slow backoff test in short mode")
	}

	repo := NewRepository(nil, "")

	calls := 0
	err := repo.withReadRetry(context.Background(), "broken read", func() error {
		calls++
		return errors.New("connection reset")
	})
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if calls != maxReadAttempts {
		t.Errorf("Expected %d calls, got %d", maxReadAttempts, calls)
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeRepository) {
		t.Errorf("Expected repository error, got %v", err)
	}
}

func TestWithReadRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewRepository(nil, "")

	calls := 0
	err := repo.withReadRetry(ctx, "cancelled read", func() error {
		calls++
		return errors.New("connection reset")
	})
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation stops retries, got %d", calls)
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeRepository) {
		t.Errorf("Expected repository error, got %v", err)
	}
}
