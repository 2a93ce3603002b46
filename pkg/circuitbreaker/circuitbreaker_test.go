package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBackend = errors.New("backend failure")

func testConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 2,
	}
}

func fail(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return errBackend })
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return nil })
}

func TestClosedStatePassesThrough(t *testing.T) {
	cb := New(testConfig())

	if err := succeed(cb); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestOpensAtFailureThreshold(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		if err := fail(cb); !errors.Is(err, errBackend) {
			t.Fatalf("failure %d: %v", i, err)
		}
	}

	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	// Open circuit rejects without invoking the function.
	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("expected rejection while open")
	}
	if called {
		t.Error("function was invoked while the circuit was open")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(testConfig())

	fail(cb)
	fail(cb)
	succeed(cb)
	fail(cb)
	fail(cb)

	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestHalfOpenProbeClosesAfterSuccesses(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		fail(cb)
	}
	time.Sleep(60 * time.Millisecond)

	// First probe transitions open -> half-open.
	if err := succeed(cb); err != nil {
		t.Fatalf("probe 1: %v", err)
	}
	if got := cb.GetState(); got != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("probe 2: %v", err)
	}

	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		fail(cb)
	}
	time.Sleep(60 * time.Millisecond)

	fail(cb)

	if got := cb.GetState(); got != StateOpen {
		t.Errorf("state = %v, want open", got)
	}
}

func TestRunReturnsValue(t *testing.T) {
	cb := New(testConfig())

	got, err := Run(context.Background(), cb, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestReset(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		fail(cb)
	}
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	cb.Reset()

	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state after reset = %v, want closed", got)
	}
	if err := succeed(cb); err != nil {
		t.Errorf("Execute after reset: %v", err)
	}
}

func TestStateChangeCallback(t *testing.T) {
	cb := New(testConfig())

	transitions := make(chan State, 4)
	cb.OnStateChange(func(from, to State) {
		transitions <- to
	})

	for i := 0; i < 3; i++ {
		fail(cb)
	}

	select {
	case to := <-transitions:
		if to != StateOpen {
			t.Errorf("transitioned to %v, want open", to)
		}
	case <-time.After(time.Second):
		t.Fatal("no state change observed")
	}
}
