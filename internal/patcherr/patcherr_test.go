package patcherr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfNil(t *testing.T) {
	if got := KindOf(nil); got != Ok {
		t.Errorf("KindOf(nil) = %v, want Ok", got)
	}
}

func TestKindOfTypedError(t *testing.T) {
	err := New(NotFound, "missing")
	if got := KindOf(err); got != NotFound {
		t.Errorf("KindOf = %v, want NotFound", got)
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := Wrap(Internal, "boom", errors.New("underlying"))
	wrapped := fmt.Errorf("outer: %w", err)
	if got := KindOf(wrapped); got != Internal {
		t.Errorf("KindOf(wrapped) = %v, want Internal", got)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain error")); got != Internal {
		t.Errorf("KindOf(foreign error) = %v, want Internal", got)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("underlying cause")
	err := Wrap(FailedPrecondition, "context", cause)
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if !errors.Is(err, cause) && errors.Unwrap(err) != cause {
		t.Error("Unwrap should expose the wrapped cause")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Ok:                 "ok",
		InvalidArgument:    "invalid_argument",
		NotFound:           "not_found",
		FailedPrecondition: "failed_precondition",
		Unimplemented:      "unimplemented",
		Internal:           "internal",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
