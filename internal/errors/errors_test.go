package errors

import (
	"errors"
	"testing"
)

func TestWeaveErrorMessage(t *testing.T) {
	e := New(CodeUnknownTask, "task not found").WithWhy("id does not exist").WithFix("check the task id")
	want := "task not found: id does not exist (UNKNOWN_TASK)"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(CodeSpecialistFailed, "specialist call failed", cause)
	if !errors.Is(e, cause) {
		t.Errorf("expected Wrap to preserve cause for errors.Is")
	}
}

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		code Code
		want Category
	}{
		{CodeCycleDetected, CategoryValidation},
		{CodeIntegrationFailed, CategoryBackend},
		{CodeHookExhausted, CategoryHook},
		{CodePersistFailed, CategoryPersistence},
	}
	for _, tc := range cases {
		if got := CategoryOf(tc.code); got != tc.want {
			t.Errorf("CategoryOf(%s) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestIsCode(t *testing.T) {
	e := New(CodeCycleDetected, "cycle")
	if !IsCode(e, CodeCycleDetected) {
		t.Errorf("expected IsCode to match")
	}
	if IsCode(e, CodeUnknownTask) {
		t.Errorf("expected IsCode to not match different code")
	}
	if IsCode(errors.New("plain"), CodeCycleDetected) {
		t.Errorf("expected IsCode to reject non-WeaveError")
	}
}
