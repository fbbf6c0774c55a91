package orchestrator

import (
	"github.com/weavehq/weave/internal/audit"
	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

// Brief is everything handed to a Specialist to produce one draft: the
// task itself, the audit findings that justified it, the drafts of its
// completed dependencies (read as interface contracts), and, on a revision
// pass, the prior draft plus the feedback that rejected it. See §4.5.
type Brief struct {
	Task              *task.Task
	RelatedAuditItems []audit.Item
	DependencyDrafts  map[string]*draft.Draft
	RevisionFeedback  []string
	PreviousDraft     *draft.Draft
}

// assembleBrief builds the brief for t out of the current state: every
// audit item recorded against t's originating component, and the drafts of
// every dependency already DONE.
func assembleBrief(s *state.ProjectState, t *task.Task) Brief {
	b := Brief{
		Task:             t.Clone(),
		DependencyDrafts: map[string]*draft.Draft{},
	}

	component := t.Metadata["component"]
	if component != "" {
		for _, item := range s.AuditItems {
			if item.Component == component {
				b.RelatedAuditItems = append(b.RelatedAuditItems, item)
			}
		}
	}

	for _, depID := range t.Dependencies {
		if d, ok := s.Drafts[depID]; ok {
			b.DependencyDrafts[depID] = d.Clone()
		}
	}

	return b
}
