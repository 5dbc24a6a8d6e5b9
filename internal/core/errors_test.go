package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := (&DomainError{
		Category: ErrCatValidation,
		Code:     "CODE",
		Message:  "message",
	}).WithCause(cause)

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be unwrapped")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to match cause")
	}

	match := &DomainError{Category: ErrCatValidation, Code: "CODE"}
	if !errors.Is(err, match) {
		t.Fatalf("expected errors.Is to match category and code")
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := &DomainError{Category: ErrCatState, Code: "X", Message: "msg"}
	err.WithDetail("k", "v")
	if err.Details == nil || err.Details["k"] != "v" {
		t.Fatalf("expected details to be set")
	}
}

func TestErrorFactories(t *testing.T) {
	if got := ErrValidation("C", "m").Category; got != ErrCatValidation {
		t.Fatalf("got %s, want validation", got)
	}
	if got := ErrState("C", "m").Category; got != ErrCatState {
		t.Fatalf("got %s, want state", got)
	}
	nf := ErrNotFound("benchmark", "a")
	if nf.Code != CodeNotFound || nf.Message != "benchmark not found: a" {
		t.Fatalf("unexpected not found error: %v", nf)
	}
	ioErr := ErrIO(CodeSinkWrite, "write", errors.New("disk full"))
	if ioErr.Category != ErrCatIO || ioErr.Unwrap() == nil {
		t.Fatalf("unexpected io error: %v", ioErr)
	}
}

func TestGetCategory(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrState(CodeBenchmarkRunning, "m"))
	if GetCategory(wrapped) != ErrCatState {
		t.Fatalf("expected state category through wrapping")
	}
	if GetCategory(errors.New("plain")) != ErrCatInternal {
		t.Fatalf("expected internal category for non-domain error")
	}
	if !IsCategory(ErrValidation("C", "m"), ErrCatValidation) {
		t.Fatalf("expected category match")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("stop: %w", ErrState(CodeBenchmarkNotRunning, "m"))
	if !HasCode(err, CodeBenchmarkNotRunning) {
		t.Fatalf("expected code match")
	}
	if HasCode(errors.New("plain"), CodeBenchmarkNotRunning) {
		t.Fatalf("plain error must not match")
	}
}
