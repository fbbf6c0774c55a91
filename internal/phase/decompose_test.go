package phase

import (
	"testing"

	"github.com/weavehq/weave/internal/audit"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

type alwaysDevelopable struct{}

func (alwaysDevelopable) IsDevelopable(string) bool { return true }

func TestDecomposeCreatesTasksAndIntegration(t *testing.T) {
	s := state.New("req")
	s.Phase = state.PhaseDecompose
	s.ParsedIntent = map[string]any{"domain": []string{"payments"}}
	s.AuditItems = []audit.Item{
		{Component: "billing-core", Status: audit.StatusMissing},
		{Component: "billing-ui", Status: audit.StatusExtensible},
		{Component: "billing-search", Status: audit.StatusAvailable},
		{Component: "billing-legacy", Status: audit.StatusInProgress},
	}
	layers := ComponentLayers{
		"billing-core": task.LayerCore,
		"billing-ui":   task.LayerWorkflow,
	}

	if err := Decompose(s, alwaysDevelopable{}, layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Phase != state.PhaseExecute {
		t.Errorf("expected phase EXECUTE, got %s", s.Phase)
	}
	// billing-core (NEW), billing-ui (EXTEND), plus one INTEGRATION task.
	if len(s.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d: %+v", len(s.Tasks), s.Tasks)
	}

	last := s.Tasks[len(s.Tasks)-1]
	if last.Kind != task.KindIntegration {
		t.Errorf("expected last task to be INTEGRATION kind, got %s", last.Kind)
	}
	if len(last.Dependencies) != 2 {
		t.Errorf("expected integration task to depend on both prior tasks, got %v", last.Dependencies)
	}

	if err := task.DetectCycle(s.Tasks); err != nil {
		t.Errorf("unexpected cycle: %v", err)
	}
}

func TestDecomposeOrdersLowerLayerFirst(t *testing.T) {
	s := state.New("req")
	s.Phase = state.PhaseDecompose
	s.ParsedIntent = map[string]any{}
	s.AuditItems = []audit.Item{
		{Component: "workflow-thing", Status: audit.StatusMissing},
		{Component: "core-thing", Status: audit.StatusMissing},
	}
	layers := ComponentLayers{
		"workflow-thing": task.LayerWorkflow,
		"core-thing":     task.LayerCore,
	}

	if err := Decompose(s, alwaysDevelopable{}, layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Tasks[0].Layer != task.LayerCore {
		t.Errorf("expected first task to be CORE layer, got %s", s.Tasks[0].Layer)
	}
	if len(s.Tasks[1].Dependencies) == 0 {
		t.Errorf("expected workflow task to depend on core task")
	}
}
