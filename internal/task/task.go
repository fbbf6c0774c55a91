// Package task defines the Task entity and the pure operations on it that
// do not require the rest of the project state: dependency validation,
// cycle detection, and id generation.
package task

import (
	"fmt"
	"sort"
	"strings"
)

// Layer is the ordinal tier of a task; it drives scheduling order and gate
// assignment. CORE is lowest, WORKFLOW highest.
type Layer string

const (
	LayerCore       Layer = "core"
	LayerInfra      Layer = "infra"
	LayerAlgorithm  Layer = "algorithm"
	LayerWorkflow   Layer = "workflow"
	LayerValidation Layer = "validation"
)

// layerOrder gives the strict ordering used by decompose's dependency
// assignment and task sort (CORE < INFRA < ALGORITHM < WORKFLOW).
// VALIDATION tasks are not part of the layer ladder; they are ordered last.
var layerOrder = map[Layer]int{
	LayerCore:      0,
	LayerInfra:     1,
	LayerAlgorithm: 2,
	LayerWorkflow:  3,
	LayerValidation: 4,
}

// LayerIndex returns the ordinal position of a layer for sorting/comparison.
func LayerIndex(l Layer) int {
	if idx, ok := layerOrder[l]; ok {
		return idx
	}
	return len(layerOrder)
}

// Kind classifies the nature of the work a task represents.
type Kind string

const (
	KindNew                Kind = "new"
	KindExtend             Kind = "extend"
	KindFix                Kind = "fix"
	KindTest               Kind = "test"
	KindIntegration        Kind = "integration"
	KindExternalDependency Kind = "external_dependency"
	KindAlgorithm          Kind = "algorithm"
	KindData               Kind = "data"
	KindResearch           Kind = "research"
	KindValidation         Kind = "validation"
)

// Scope is a coarse size estimate for a task.
type Scope string

const (
	ScopeSmall  Scope = "small"
	ScopeMedium Scope = "medium"
	ScopeLarge  Scope = "large"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusDeferred   Status = "deferred"
	StatusTerminated Status = "terminated"
)

// IsTerminal reports whether a task in this status will never transition
// again under normal orchestration (DEFERRED can still return to PENDING).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusTerminated:
		return true
	default:
		return false
	}
}

// GateKind is an automated quality check kind.
type GateKind string

const (
	GateBuild    GateKind = "build"
	GateUnit     GateKind = "unit"
	GateLint     GateKind = "lint"
	GateContract GateKind = "contract"
	GateNumeric  GateKind = "numeric"
)

// GatesForLayer returns the gate list inferred from a layer, per decompose:
// CORE -> {build, unit, lint, contract}; INFRA/ALGORITHM/WORKFLOW -> {unit, lint}.
func GatesForLayer(l Layer) []GateKind {
	switch l {
	case LayerCore:
		return []GateKind{GateBuild, GateUnit, GateLint, GateContract}
	case LayerInfra, LayerAlgorithm, LayerWorkflow:
		return []GateKind{GateUnit, GateLint}
	default:
		return nil
	}
}

// Task is the unit of work scheduled and driven by the orchestrator.
type Task struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`

	Layer      Layer  `json:"layer"`
	Kind       Kind   `json:"kind"`
	Scope      Scope  `json:"scope"`
	Specialist string `json:"specialist,omitempty"`
	Status     Status `json:"status"`

	Dependencies       []string `json:"dependencies"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	AnticipatedFiles   []string `json:"anticipated_files"`
	Gates              []GateKind `json:"gates"`

	// DeferTrigger is a non-empty "TASK-ID:condition" string while the task
	// is DEFERRED; nil otherwise. See invariant 7.
	DeferTrigger *string `json:"defer_trigger,omitempty"`

	// OriginalDependencies and SuspendedDependencies are only populated once
	// a task has been subject to defer/restore. See invariant 3.
	OriginalDependencies  []string `json:"original_dependencies,omitempty"`
	SuspendedDependencies []string `json:"suspended_dependencies,omitempty"`

	SpecRef  string            `json:"spec_ref,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// New constructs a pending task with the given id and title, and
// zero-valued-but-non-nil slices so JSON output omits no keys.
func New(id, title string) *Task {
	return &Task{
		ID:                 id,
		Title:              title,
		Status:             StatusPending,
		Dependencies:       []string{},
		AcceptanceCriteria: []string{},
		AnticipatedFiles:   []string{},
		Gates:              []GateKind{},
	}
}

// IsBlocked reports whether t has any dependency not yet satisfied, given a
// lookup of all tasks in the state.
func (t *Task) IsBlocked(byID map[string]*Task) bool {
	return len(t.UnmetDependencies(byID)) > 0
}

// UnmetDependencies returns the subset of t.Dependencies whose task is
// missing or not DONE.
func (t *Task) UnmetDependencies(byID map[string]*Task) []string {
	var unmet []string
	for _, depID := range t.Dependencies {
		dep, ok := byID[depID]
		if !ok || dep.Status != StatusDone {
			unmet = append(unmet, depID)
		}
	}
	return unmet
}

// CanRun reports whether t is eligible for selection: PENDING and all
// current dependencies DONE.
func (t *Task) CanRun(byID map[string]*Task) bool {
	return t.Status == StatusPending && !t.IsBlocked(byID)
}

// ValidateDependencies checks invariant 2: every dependency id resolves to
// a task in byID, unless it is present in SuspendedDependencies instead.
func (t *Task) ValidateDependencies(byID map[string]*Task) error {
	for _, depID := range t.Dependencies {
		if depID == t.ID {
			return fmt.Errorf("task %s depends on itself", t.ID)
		}
		if _, ok := byID[depID]; !ok {
			return fmt.Errorf("task %s has dangling dependency %s", t.ID, depID)
		}
	}
	return nil
}

// DetectCycle runs a DFS over the dependency graph formed by all tasks in
// the slice, returning an error naming the cycle if one exists.
func DetectCycle(all []*Task) error {
	byID := make(map[string]*Task, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(all))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			path = append(path, id)
			return fmt.Errorf("dependency cycle detected: %s", strings.Join(path, " -> "))
		}
		color[id] = gray
		path = append(path, id)
		t, ok := byID[id]
		if ok {
			for _, dep := range t.Dependencies {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, t := range all {
		if color[t.ID] == white {
			if err := visit(t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// SortByLayer sorts tasks by layer order (CORE < INFRA < ALGORITHM <
// WORKFLOW < VALIDATION), stable so equal-layer tasks keep relative order.
func SortByLayer(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return LayerIndex(tasks[i].Layer) < LayerIndex(tasks[j].Layer)
	})
}

// Clone returns a deep copy of t, so transient brief assembly never lets a
// backend retain a live pointer into state.
func (t *Task) Clone() *Task {
	c := *t
	c.Dependencies = append([]string(nil), t.Dependencies...)
	c.AcceptanceCriteria = append([]string(nil), t.AcceptanceCriteria...)
	c.AnticipatedFiles = append([]string(nil), t.AnticipatedFiles...)
	c.Gates = append([]GateKind(nil), t.Gates...)
	if t.DeferTrigger != nil {
		dt := *t.DeferTrigger
		c.DeferTrigger = &dt
	}
	c.OriginalDependencies = append([]string(nil), t.OriginalDependencies...)
	c.SuspendedDependencies = append([]string(nil), t.SuspendedDependencies...)
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
