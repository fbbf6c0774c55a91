package phase

import (
	"fmt"
	"strings"

	"github.com/weavehq/weave/internal/audit"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

// ComponentLayers maps a component name to the layer a task against it
// belongs to. Components absent from the map default to LayerAlgorithm.
type ComponentLayers map[string]task.Layer

// LayerOf returns the layer for component, defaulting to LayerAlgorithm
// when the component is not explicitly mapped.
func (c ComponentLayers) LayerOf(component string) task.Layer {
	if l, ok := c[component]; ok {
		return l
	}
	return task.LayerAlgorithm
}

// Decompose groups audit items by status and creates one task per MISSING
// or EXTENSIBLE finding (a non-developable MISSING component becomes an
// external_dependency task), assigns layers and gates, orders by layer, and
// appends the closing integration task, per §4.2. It requires the state to
// be in PhaseDecompose and advances it to PhaseExecute.
func Decompose(s *state.ProjectState, registry interface {
	IsDevelopable(component string) bool
}, layers ComponentLayers) error {
	if err := s.AssertPhase(state.PhaseDecompose); err != nil {
		return err
	}

	prefix := derivePrefix(s.ParsedIntent)
	var created []*task.Task

	for i, item := range s.AuditItems {
		tempID := fmt.Sprintf("_tmp_%d", i)
		switch item.Status {
		case audit.StatusInProgress:
			continue
		case audit.StatusMissing:
			developable := registry == nil || registry.IsDevelopable(item.Component)
			kind := task.KindNew
			if !developable {
				kind = task.KindExternalDependency
			}
			t := newComponentTask(tempID, item, kind, layers)
			t.Metadata["developable"] = fmt.Sprintf("%v", developable)
			created = append(created, t)
		case audit.StatusExtensible:
			created = append(created, newComponentTask(tempID, item, task.KindExtend, layers))
		case audit.StatusAvailable:
			// Already available; no task created.
		}
	}

	task.SortByLayer(created)
	task.Renumber(created, prefix)
	assignLayerDependencies(created)

	for _, t := range created {
		if err := s.AppendTask(t); err != nil {
			return err
		}
	}

	if len(s.Tasks) > 0 {
		integrationTask := buildIntegrationTask(s.Tasks, prefix, len(s.Tasks)+1)
		if err := s.AppendTask(integrationTask); err != nil {
			return err
		}
	}

	s.AdvancePhase(state.PhaseExecute)
	return nil
}

func newComponentTask(id string, item audit.Item, kind task.Kind, layers ComponentLayers) *task.Task {
	layer := layers.LayerOf(item.Component)
	t := task.New(id, item.Component)
	t.Description = item.Description
	t.Kind = kind
	t.Layer = layer
	t.Scope = task.ScopeMedium
	t.Gates = task.GatesForLayer(layer)
	t.Status = task.StatusPending
	t.Metadata = map[string]string{
		"component":   item.Component,
		"audit_status": string(item.Status),
	}
	return t
}

// assignLayerDependencies sets each task's dependencies to every earlier
// task in a strictly lower layer, per §4.2 ("Set each task's dependencies
// to all earlier tasks in strictly lower layers").
func assignLayerDependencies(tasks []*task.Task) {
	for i, t := range tasks {
		var deps []string
		for j := 0; j < i; j++ {
			if task.LayerIndex(tasks[j].Layer) < task.LayerIndex(t.Layer) {
				deps = append(deps, tasks[j].ID)
			}
		}
		t.Dependencies = deps
	}
}

func buildIntegrationTask(allTasks []*task.Task, prefix string, seq int) *task.Task {
	t := task.New(nextIntegrationID(prefix, seq), "Integration")
	t.Description = "cross-task integration validation"
	t.Kind = task.KindIntegration
	t.Layer = task.LayerWorkflow
	t.Gates = []task.GateKind{task.GateUnit, task.GateNumeric}
	t.Status = task.StatusPending
	for _, prior := range allTasks {
		t.Dependencies = append(t.Dependencies, prior.ID)
	}
	return t
}

func nextIntegrationID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// derivePrefix derives the task-id prefix from the parsed intent's domain
// terms, falling back to "TASK" when no domain term is available.
func derivePrefix(parsedIntent map[string]any) string {
	domain, _ := parsedIntent["domain"].([]string)
	if len(domain) == 0 {
		return "TASK"
	}
	term := domain[0]
	if len(term) > 4 {
		term = term[:4]
	}
	return strings.ToUpper(term)
}
