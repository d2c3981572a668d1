package resilience

import (
	"errors"
	"testing"
	"time"
)

var errProbe = errors.New("probe failed")

func failingN(n int) func() error {
	count := 0
	return func() error {
		count++
		if count <= n {
			return errProbe
		}
		return nil
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
	fail := func() error { return errProbe }

	for i := 0; i < 3; i++ {
		if err := cb.Execute(fail); !errors.Is(err, errProbe) {
			t.Fatalf("attempt %d: err = %v", i, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}
	if err := cb.Execute(fail); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open circuit err = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})
	if err := cb.Execute(func() error { return errProbe }); !errors.Is(err, errProbe) {
		t.Fatalf("err = %v", err)
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe after cool-down failed: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", cb.GetState())
	}
}

func TestCircuitBreakerReopensOnFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})
	cb.Execute(func() error { return errProbe })
	time.Sleep(20 * time.Millisecond)

	cb.Execute(func() error { return errProbe })
	if cb.GetState() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", cb.GetState())
	}
}

func TestCircuitBreakerClosedResetsOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
	fn := failingN(2)
	cb.Execute(fn)
	cb.Execute(fn)
	if err := cb.Execute(fn); err != nil {
		t.Fatalf("err = %v", err)
	}
	// Two failures then a success must not trip a threshold of three.
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed", cb.GetState())
	}
	cb.Execute(func() error { return errProbe })
	cb.Execute(func() error { return errProbe })
	if cb.GetState() != StateClosed {
		t.Errorf("failure streak did not restart after success")
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	cb.Execute(func() error { return errProbe })
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}
	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after Reset", cb.GetState())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("execute after reset: %v", err)
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
