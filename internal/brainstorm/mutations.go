package brainstorm

import (
	"fmt"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

// TaskSpec describes the fields used to construct a new task from a split.
type TaskSpec struct {
	Title              string
	Description        string
	Layer              task.Layer
	Kind               task.Kind
	Scope              task.Scope
	Specialist         string
	AcceptanceCriteria []string
	AnticipatedFiles   []string
	Gates              []task.GateKind
}

func cloneTasks(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// withRollback applies mutate to a deep copy of s's tasks, validates the
// result against the state invariants, and only commits the copy back onto
// s if validation passes. Every mutation in this file goes through this so
// a refused mutation leaves the original state byte-for-byte unchanged.
// On commit, tasks that survive the mutation are written back into their
// original *task.Task values, so pointers held by callers stay live.
func withRollback(s *state.ProjectState, mutate func(*state.ProjectState) error) error {
	tmp := *s
	tmp.Tasks = cloneTasks(s.Tasks)

	if err := mutate(&tmp); err != nil {
		return err
	}
	if err := tmp.ValidateInvariants(); err != nil {
		return err
	}

	orig := s.TasksByID()
	for i, t := range tmp.Tasks {
		if o, ok := orig[t.ID]; ok {
			*o = *t
			tmp.Tasks[i] = o
		}
	}
	s.Tasks = tmp.Tasks
	s.CurrentTaskID = tmp.CurrentTaskID
	return nil
}

func directConsumers(id string, all []*task.Task) []*task.Task {
	var out []*task.Task
	for _, t := range all {
		for _, dep := range t.Dependencies {
			if dep == id {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func removeString(ss []string, target string) []string {
	out := ss[:0:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func containsString(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}

// moveToSuspended moves id out of t.Dependencies and into
// t.SuspendedDependencies, snapshotting t.OriginalDependencies the first
// time t is ever affected by a defer, per invariant 3.
func moveToSuspended(t *task.Task, id string) {
	if t.OriginalDependencies == nil {
		t.OriginalDependencies = append([]string(nil), t.Dependencies...)
		t.OriginalDependencies = append(t.OriginalDependencies, t.SuspendedDependencies...)
	}
	t.Dependencies = removeString(t.Dependencies, id)
	if !containsString(t.SuspendedDependencies, id) {
		t.SuspendedDependencies = append(t.SuspendedDependencies, id)
	}
}

// Defer marks id DEFERRED, transitively defers strictly-upstream tasks
// that have no consumer outside the deferred set, and moves id (and any
// such upstream tasks) out of every downstream task's dependencies into
// suspended_dependencies. See §4.3.
func Defer(s *state.ProjectState, id, trigger string) error {
	return withRollback(s, func(tmp *state.ProjectState) error {
		byID := tmp.TasksByID()
		target, ok := byID[id]
		if !ok {
			return fmt.Errorf("defer: unknown task %s", id)
		}

		toDefer := map[string]bool{id: true}
		changed := true
		for changed {
			changed = false
			for _, t := range tmp.Tasks {
				if toDefer[t.ID] {
					continue
				}
				isAncestorOfDeferred := false
				for d := range toDefer {
					if dependsOn(byID, d, t.ID) {
						isAncestorOfDeferred = true
						break
					}
				}
				if !isAncestorOfDeferred {
					continue
				}
				consumers := directConsumers(t.ID, tmp.Tasks)
				allConsumersDeferred := true
				for _, c := range consumers {
					if !toDefer[c.ID] {
						allConsumersDeferred = false
						break
					}
				}
				if allConsumersDeferred {
					toDefer[t.ID] = true
					changed = true
				}
			}
		}

		for defID := range toDefer {
			t := byID[defID]
			t.Status = task.StatusDeferred
			trig := trigger
			t.DeferTrigger = &trig
		}

		for _, t := range tmp.Tasks {
			if toDefer[t.ID] {
				continue
			}
			for defID := range toDefer {
				if containsString(t.Dependencies, defID) {
					moveToSuspended(t, defID)
				}
			}
		}

		_ = target
		return nil
	})
}

// dependsOn reports whether task a's dependency chain includes b (direct
// or transitive), used to find id's strict ancestors.
func dependsOn(byID map[string]*task.Task, a, b string) bool {
	visited := map[string]bool{}
	var visit func(string) bool
	visit = func(cur string) bool {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		t, ok := byID[cur]
		if !ok {
			return false
		}
		for _, dep := range t.Dependencies {
			if dep == b || visit(dep) {
				return true
			}
		}
		return false
	}
	return visit(a)
}

// Restore reverts a single defer: id returns to PENDING, is re-inserted
// into every downstream task's dependencies, and its defer_trigger is
// cleared. See §4.3.
func Restore(s *state.ProjectState, id string) error {
	return withRollback(s, func(tmp *state.ProjectState) error {
		byID := tmp.TasksByID()
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("restore: unknown task %s", id)
		}
		t.Status = task.StatusPending
		t.DeferTrigger = nil

		for _, dt := range tmp.Tasks {
			if !containsString(dt.SuspendedDependencies, id) {
				continue
			}
			dt.SuspendedDependencies = removeString(dt.SuspendedDependencies, id)
			if !containsString(dt.Dependencies, id) {
				dt.Dependencies = append(dt.Dependencies, id)
			}
			if len(dt.SuspendedDependencies) == 0 {
				dt.SuspendedDependencies = nil
			}
		}
		return nil
	})
}

// Split replaces id with a PENDING "safe part" and a DEFERRED "risky part",
// both inheriting id's upstream dependencies; downstream tasks depend on
// the safe part directly and hold the risky part as a suspended
// dependency, restorable once its trigger fires. See §4.3.
func Split(s *state.ProjectState, id string, safeSpec, riskySpec TaskSpec, trigger string) error {
	return withRollback(s, func(tmp *state.ProjectState) error {
		byID := tmp.TasksByID()
		orig, ok := byID[id]
		if !ok {
			return fmt.Errorf("split: unknown task %s", id)
		}

		safeID := id + "-safe"
		riskyID := id + "-risky"

		safe := task.New(safeID, safeSpec.Title)
		applySpec(safe, safeSpec)
		safe.Dependencies = append([]string(nil), orig.Dependencies...)
		safe.Status = task.StatusPending

		risky := task.New(riskyID, riskySpec.Title)
		applySpec(risky, riskySpec)
		risky.Dependencies = append([]string(nil), orig.Dependencies...)
		risky.Status = task.StatusDeferred
		trig := trigger
		risky.DeferTrigger = &trig

		var newTasks []*task.Task
		for _, t := range tmp.Tasks {
			if t.ID == id {
				newTasks = append(newTasks, safe, risky)
				continue
			}
			newTasks = append(newTasks, t)
		}
		tmp.Tasks = newTasks

		for _, dt := range tmp.Tasks {
			if dt.ID == safeID || dt.ID == riskyID {
				continue
			}
			if !containsString(dt.Dependencies, id) {
				continue
			}
			for i, dep := range dt.Dependencies {
				if dep == id {
					dt.Dependencies[i] = safeID
				}
			}
			if !containsString(dt.SuspendedDependencies, riskyID) {
				dt.SuspendedDependencies = append(dt.SuspendedDependencies, riskyID)
			}
		}
		return nil
	})
}

func applySpec(t *task.Task, spec TaskSpec) {
	t.Description = spec.Description
	t.Layer = spec.Layer
	t.Kind = spec.Kind
	t.Scope = spec.Scope
	t.Specialist = spec.Specialist
	if spec.AcceptanceCriteria != nil {
		t.AcceptanceCriteria = append([]string(nil), spec.AcceptanceCriteria...)
	}
	if spec.AnticipatedFiles != nil {
		t.AnticipatedFiles = append([]string(nil), spec.AnticipatedFiles...)
	}
	if spec.Gates != nil {
		t.Gates = append([]task.GateKind(nil), spec.Gates...)
	}
}

// Terminate sets id TERMINATED, prepends "[TERMINATED]" to its
// description, and removes id from every downstream task's dependencies.
// The task remains in state for audit. See §4.3.
func Terminate(s *state.ProjectState, id string) error {
	return withRollback(s, func(tmp *state.ProjectState) error {
		byID := tmp.TasksByID()
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("terminate: unknown task %s", id)
		}
		t.Status = task.StatusTerminated
		t.Description = "[TERMINATED] " + t.Description

		for _, dt := range tmp.Tasks {
			dt.Dependencies = removeString(dt.Dependencies, id)
			dt.SuspendedDependencies = removeString(dt.SuspendedDependencies, id)
		}
		return nil
	})
}

// Drop removes id from the state entirely and strips dangling references
// to it from every other task. See §4.3.
func Drop(s *state.ProjectState, id string) error {
	return withRollback(s, func(tmp *state.ProjectState) error {
		if !tmp.RemoveTask(id) {
			return fmt.Errorf("drop: unknown task %s", id)
		}
		for _, dt := range tmp.Tasks {
			dt.Dependencies = removeString(dt.Dependencies, id)
			dt.SuspendedDependencies = removeString(dt.SuspendedDependencies, id)
			dt.OriginalDependencies = removeString(dt.OriginalDependencies, id)
		}
		return nil
	})
}
