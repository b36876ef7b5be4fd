package errors

import (
	"errors"
	"testing"
)

func TestExitCodeForTaggedError(t *testing.T) {
	err := New(BadStringOperation, "index %d out of range", 5)
	if got := ExitCode(err); got != int(BadStringOperation) {
		t.Errorf("got %d, want %d", got, BadStringOperation)
	}
}

func TestExitCodeForUntaggedError(t *testing.T) {
	if got := ExitCode(errors.New("boom")); got != int(Intern) {
		t.Errorf("got %d, want %d", got, Intern)
	}
}

func TestExitCodeForNil(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestWrapPreservesCauseViaUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(Intern, cause, "invariant violated")
	if wrapped.Code != Intern {
		t.Errorf("got code %v, want INTERN", wrapped.Code)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected Unwrap chain to reach the original cause")
	}
}

func TestWrapPreservesCodeOtherThanIntern(t *testing.T) {
	cause := errors.New("no such file")
	wrapped := Wrap(InputFile, cause, "failed to open input file %q", "missing.txt")
	if wrapped.Code != InputFile {
		t.Errorf("got code %v, want INPUT_FILE", wrapped.Code)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected Unwrap chain to reach the original cause")
	}
}

func TestCodeString(t *testing.T) {
	if got := BadOperandType.String(); got != "BAD_OPERAND_TYPE" {
		t.Errorf("got %q", got)
	}
}
