// Package errors provides structured error types for weave.
package errors

import (
	"encoding/json"
	"fmt"
)

// Code identifies a specific error condition.
type Code string

const (
	// Validation errors: invariant violations caught locally, operation refused.
	CodeUnknownTask       Code = "UNKNOWN_TASK"
	CodeCycleDetected     Code = "CYCLE_DETECTED"
	CodeDanglingDependency Code = "DANGLING_DEPENDENCY"
	CodeInvalidPhase      Code = "INVALID_PHASE"
	CodeInvalidMutation   Code = "INVALID_MUTATION"
	CodeDuplicateTaskID   Code = "DUPLICATE_TASK_ID"

	// Backend errors: specialist/reviewer/gate/integration backend failed.
	CodeSpecialistFailed   Code = "SPECIALIST_FAILED"
	CodeReviewerFailed     Code = "REVIEWER_FAILED"
	CodeGateRunnerFailed   Code = "GATE_RUNNER_FAILED"
	CodeIntegrationFailed  Code = "INTEGRATION_FAILED"
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"

	// Hook errors: ai_review/human_check/brainstorm exhausted retry or unresolved.
	CodeHookExhausted   Code = "HOOK_EXHAUSTED"
	CodeHookUnresolved  Code = "HOOK_UNRESOLVED"
	CodeMaxRevisions    Code = "MAX_REVISIONS_REACHED"
	CodeMaxGateRetries  Code = "MAX_GATE_RETRIES_REACHED"

	// Persistence errors: fatal to the current call.
	CodePersistFailed Code = "PERSIST_FAILED"
	CodeLoadFailed    Code = "LOAD_FAILED"
)

// Category groups error codes by the taxonomy in the error handling design.
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryBackend     Category = "backend"
	CategoryHook        Category = "hook"
	CategoryPersistence Category = "persistence"
)

var codeCategory = map[Code]Category{
	CodeUnknownTask:        CategoryValidation,
	CodeCycleDetected:      CategoryValidation,
	CodeDanglingDependency: CategoryValidation,
	CodeInvalidPhase:       CategoryValidation,
	CodeInvalidMutation:    CategoryValidation,
	CodeDuplicateTaskID:    CategoryValidation,

	CodeSpecialistFailed:   CategoryBackend,
	CodeReviewerFailed:     CategoryBackend,
	CodeGateRunnerFailed:   CategoryBackend,
	CodeIntegrationFailed:  CategoryBackend,
	CodeBackendUnavailable: CategoryBackend,

	CodeHookExhausted:  CategoryHook,
	CodeHookUnresolved: CategoryHook,
	CodeMaxRevisions:   CategoryHook,
	CodeMaxGateRetries: CategoryHook,

	CodePersistFailed: CategoryPersistence,
	CodeLoadFailed:    CategoryPersistence,
}

// CategoryOf returns the category a code belongs to, per the error taxonomy.
func CategoryOf(c Code) Category {
	if cat, ok := codeCategory[c]; ok {
		return cat
	}
	return CategoryValidation
}

// WeaveError is the structured error type used across the core.
type WeaveError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

func (e *WeaveError) Error() string {
	if e.Why != "" {
		return fmt.Sprintf("%s: %s (%s)", e.What, e.Why, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.What, e.Code)
}

func (e *WeaveError) Unwrap() error {
	return e.Cause
}

// Category returns the taxonomy category for this error.
func (e *WeaveError) Category() Category {
	return CategoryOf(e.Code)
}

// New constructs a WeaveError.
func New(code Code, what string) *WeaveError {
	return &WeaveError{Code: code, What: what}
}

// Wrap constructs a WeaveError that wraps a lower-level cause.
func Wrap(code Code, what string, cause error) *WeaveError {
	return &WeaveError{Code: code, What: what, Cause: cause}
}

// WithWhy sets the Why field and returns the receiver for chaining.
func (e *WeaveError) WithWhy(why string) *WeaveError {
	e.Why = why
	return e
}

// WithFix sets the Fix field and returns the receiver for chaining.
func (e *WeaveError) WithFix(fix string) *WeaveError {
	e.Fix = fix
	return e
}

// MarshalJSON renders the error for diagnostic logging; Cause is summarized
// as a string since errors are not always serializable.
func (e *WeaveError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code  Code   `json:"code"`
		What  string `json:"what"`
		Why   string `json:"why,omitempty"`
		Fix   string `json:"fix,omitempty"`
		Cause string `json:"cause,omitempty"`
	}
	a := alias{Code: e.Code, What: e.What, Why: e.Why, Fix: e.Fix}
	if e.Cause != nil {
		a.Cause = e.Cause.Error()
	}
	return json.Marshal(a)
}

// IsCode reports whether err is a *WeaveError with the given code.
func IsCode(err error, code Code) bool {
	we, ok := err.(*WeaveError)
	return ok && we.Code == code
}
