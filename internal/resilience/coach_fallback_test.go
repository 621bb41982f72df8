package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/cadenza/pkg/provider/coach"
	coachmock "github.com/MrWong99/cadenza/pkg/provider/coach/mock"
)

func TestCoachFallback_PrimarySuccess(t *testing.T) {
	primary := &coachmock.Provider{Feedback: "tips from primary"}
	secondary := &coachmock.Provider{Feedback: "tips from secondary"}

	fb := NewCoachFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	got, err := fb.Coach(context.Background(), coach.Request{Transcript: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tips from primary" {
		t.Fatalf("feedback = %q, want 'tips from primary'", got)
	}
	if primary.CallCount() != 1 {
		t.Fatalf("primary called %d times, want 1", primary.CallCount())
	}
	if secondary.CallCount() != 0 {
		t.Fatalf("secondary called %d times, want 0", secondary.CallCount())
	}
}

func TestCoachFallback_Failover(t *testing.T) {
	primary := &coachmock.Provider{Err: errors.New("primary down")}
	secondary := &coachmock.Provider{Feedback: "tips from secondary"}

	fb := NewCoachFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	got, err := fb.Coach(context.Background(), coach.Request{Transcript: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tips from secondary" {
		t.Fatalf("feedback = %q, want 'tips from secondary'", got)
	}
	if primary.CallCount() != 1 || secondary.CallCount() != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", primary.CallCount(), secondary.CallCount())
	}
}

func TestCoachFallback_AllFail(t *testing.T) {
	primary := &coachmock.Provider{Err: errors.New("primary down")}
	secondary := &coachmock.Provider{Err: errors.New("secondary down")}

	fb := NewCoachFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	_, err := fb.Coach(context.Background(), coach.Request{})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("error = %v, want ErrAllFailed", err)
	}
}

func TestCoachFallback_OpenBreakerSkipsPrimary(t *testing.T) {
	primary := &coachmock.Provider{Err: errors.New("primary down")}
	secondary := &coachmock.Provider{Feedback: "tips from secondary"}

	fb := NewCoachFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fb.AddFallback("secondary", secondary)

	// First call fails the primary and trips its breaker.
	if _, err := fb.Coach(context.Background(), coach.Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Second call must skip the primary entirely.
	if _, err := fb.Coach(context.Background(), coach.Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.CallCount() != 1 {
		t.Fatalf("primary called %d times, want 1 (breaker open)", primary.CallCount())
	}
	if secondary.CallCount() != 2 {
		t.Fatalf("secondary called %d times, want 2", secondary.CallCount())
	}
}
