package hooks

import (
	"fmt"

	"github.com/weavehq/weave/internal/audit"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

// DefaultChecks returns the named ai_review predicates configured for
// after_decompose and after_task_complete, per §4.4.
func DefaultChecks() map[string]AICheck {
	return map[string]AICheck{
		CheckCompleteness:       Completeness,
		CheckBranchAwareness:    BranchAwareness,
		CheckDevelopableRespect: DevelopableRespect,
		CheckDependencyOrder:    DependencyOrder,
		CheckScopeSanity:        ScopeSanity,
		CheckNoFrozenMutation:   NoFrozenMutation,
	}
}

// Completeness warns on any non-integration task carrying no acceptance
// criteria, since a reviewer has nothing to check the draft against.
func Completeness(s *state.ProjectState) (warnings, errs []string) {
	for _, t := range s.Tasks {
		if t.Kind == task.KindIntegration {
			continue
		}
		if len(t.AcceptanceCriteria) == 0 {
			warnings = append(warnings, fmt.Sprintf("task %s has no acceptance criteria", t.ID))
		}
	}
	return warnings, errs
}

// BranchAwareness errors when a task was created against a component that
// the audit step recorded as IN_PROGRESS on another branch: decompose must
// skip IN_PROGRESS findings, so a task carrying that metadata means the
// skip did not take effect.
func BranchAwareness(s *state.ProjectState) (warnings, errs []string) {
	for _, t := range s.Tasks {
		if t.Metadata["audit_status"] == string(audit.StatusInProgress) {
			errs = append(errs, fmt.Sprintf("task %s created against an in-progress component %q", t.ID, t.Metadata["component"]))
		}
	}
	return warnings, errs
}

// DevelopableRespect errors when a task is marked EXTERNAL_DEPENDENCY but
// its own audit record says the component was developable, or vice versa.
func DevelopableRespect(s *state.ProjectState) (warnings, errs []string) {
	for _, t := range s.Tasks {
		developable, ok := t.Metadata["developable"]
		if !ok {
			continue
		}
		if developable == "true" && t.Kind == task.KindExternalDependency {
			errs = append(errs, fmt.Sprintf("task %s routed to external_dependency despite a developable component", t.ID))
		}
		if developable == "false" && t.Kind != task.KindExternalDependency {
			errs = append(errs, fmt.Sprintf("task %s treats a non-developable component as buildable", t.ID))
		}
	}
	return warnings, errs
}

// DependencyOrder warns when a task depends on a peer in a higher layer,
// which decompose's own assignment never produces but a brainstorm
// split/restore could leave behind. Same-layer dependencies are not
// reported.
func DependencyOrder(s *state.ProjectState) (warnings, errs []string) {
	byID := s.TasksByID()
	for _, t := range s.Tasks {
		for _, depID := range t.Dependencies {
			dep, ok := byID[depID]
			if !ok {
				continue
			}
			if task.LayerIndex(dep.Layer) > task.LayerIndex(t.Layer) {
				warnings = append(warnings, fmt.Sprintf("task %s depends on %s in a higher layer", t.ID, dep.ID))
			}
		}
	}
	return warnings, errs
}

// ScopeSanity warns on a LARGE-scope task with fewer than two acceptance
// criteria, a sign the decomposition under-specified a substantial task.
func ScopeSanity(s *state.ProjectState) (warnings, errs []string) {
	for _, t := range s.Tasks {
		if t.Scope == task.ScopeLarge && len(t.AcceptanceCriteria) < 2 {
			warnings = append(warnings, fmt.Sprintf("task %s is LARGE scope with fewer than 2 acceptance criteria", t.ID))
		}
	}
	return warnings, errs
}

// NoFrozenMutation errors if a TERMINATED task is still named as a live
// dependency: Terminate must strip it from every downstream task's
// dependency list, so this check catches a mutation that skipped cleanup.
func NoFrozenMutation(s *state.ProjectState) (warnings, errs []string) {
	byID := s.TasksByID()
	for _, t := range s.Tasks {
		for _, depID := range t.Dependencies {
			dep, ok := byID[depID]
			if ok && dep.Status == task.StatusTerminated {
				errs = append(errs, fmt.Sprintf("task %s still depends on terminated task %s", t.ID, dep.ID))
			}
		}
	}
	return warnings, errs
}
