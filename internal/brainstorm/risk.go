// Package brainstorm implements risk detection, task mutation, and the
// run_brainstorm entry point with its three operational modes.
package brainstorm

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/weavehq/weave/internal/task"
)

// RiskCheck is a predicate over one task in the context of all tasks,
// returning a non-empty reason when the task is flagged, or "" when clean.
type RiskCheck func(t *task.Task, all []*task.Task, cfg Config) string

// Config tunes the risk checks' configurable thresholds and keyword sets.
type Config struct {
	ExternalDependencyKeywords []string
	HighUncertaintyKeywords    []string
	LongCriticalPathThreshold  int
	LowValueKeywords           []string
	JaccardThreshold           float64
}

// DefaultConfig returns the thresholds used when the caller supplies none.
func DefaultConfig() Config {
	return Config{
		ExternalDependencyKeywords: []string{"third-party", "external api", "vendor", "saas"},
		HighUncertaintyKeywords:    []string{"research", "explore", "investigate", "prototype", "spike"},
		LongCriticalPathThreshold:  5,
		LowValueKeywords:           []string{"docs", "documentation", "readme"},
		JaccardThreshold:           0.6,
	}
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// ExternalDependency flags a task whose description/title matches
// configured keywords indicating external tooling or data.
func ExternalDependency(t *task.Task, all []*task.Task, cfg Config) string {
	if containsAny(t.Title+" "+t.Description, cfg.ExternalDependencyKeywords) {
		return "task references an external dependency"
	}
	return ""
}

// HighUncertainty flags a task whose description/title matches
// research/exploration keywords.
func HighUncertainty(t *task.Task, all []*task.Task, cfg Config) string {
	if containsAny(t.Title+" "+t.Description, cfg.HighUncertaintyKeywords) {
		return "task carries high uncertainty (research/exploration indicators)"
	}
	return ""
}

// LongCriticalPath flags a task with at least cfg.LongCriticalPathThreshold
// transitive downstream tasks.
func LongCriticalPath(t *task.Task, all []*task.Task, cfg Config) string {
	count := len(transitiveDownstream(t.ID, all))
	if count >= cfg.LongCriticalPathThreshold {
		return "task sits on a long critical path"
	}
	return ""
}

// transitiveDownstream returns the set of task ids that transitively
// depend on id.
func transitiveDownstream(id string, all []*task.Task) map[string]bool {
	direct := map[string][]string{}
	for _, t := range all {
		for _, dep := range t.Dependencies {
			direct[dep] = append(direct[dep], t.ID)
		}
	}
	visited := map[string]bool{}
	var visit func(string)
	visit = func(cur string) {
		for _, next := range direct[cur] {
			if !visited[next] {
				visited[next] = true
				visit(next)
			}
		}
	}
	visit(id)
	return visited
}

// NoveltyGap flags a task carrying "port/migrate" indicators while also
// tagged high-priority/frontier via metadata.
func NoveltyGap(t *task.Task, all []*task.Task, cfg Config) string {
	portIndicators := containsAny(t.Title+" "+t.Description, []string{"port", "migrate", "migration"})
	if !portIndicators {
		return ""
	}
	priority := strings.ToLower(t.Metadata["priority"])
	frontier := strings.ToLower(t.Metadata["frontier"]) == "true"
	if priority == "high" || frontier {
		return "port/migrate task tagged high-priority or frontier"
	}
	return ""
}

// RedundantWithPeers flags a task whose title, description, or file list
// overlaps significantly (token-Jaccard >= cfg.JaccardThreshold) with
// another task in the same layer.
func RedundantWithPeers(t *task.Task, all []*task.Task, cfg Config) string {
	tTokens := tokenSet(t.Title + " " + t.Description)
	for _, other := range all {
		if other.ID == t.ID || other.Layer != t.Layer {
			continue
		}
		oTokens := tokenSet(other.Title + " " + other.Description)
		if jaccard(tTokens, oTokens) >= cfg.JaccardThreshold {
			return "overlaps significantly with task " + other.ID
		}
		if fileOverlap(t.AnticipatedFiles, other.AnticipatedFiles) {
			return "anticipated files overlap with task " + other.ID
		}
	}
	return ""
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// fileOverlap reports whether any anticipated file of a matches any
// anticipated file (or glob) of b, using doublestar so a glob-style
// anticipated path ("internal/**") still flags a literal overlap.
func fileOverlap(a, b []string) bool {
	for _, pa := range a {
		for _, pb := range b {
			if pa == pb {
				return true
			}
			if ok, _ := doublestar.Match(pb, pa); ok {
				return true
			}
			if ok, _ := doublestar.Match(pa, pb); ok {
				return true
			}
		}
	}
	return false
}

// LowROI flags a leaf task (nothing depends on it) whose kind is TEST or
// whose title carries a low-value keyword (e.g. documentation).
func LowROI(t *task.Task, all []*task.Task, cfg Config) string {
	isLeaf := len(transitiveDownstream(t.ID, all)) == 0
	if !isLeaf {
		return ""
	}
	if t.Kind == task.KindTest || containsAny(t.Title, cfg.LowValueKeywords) {
		return "low-value leaf task (test/documentation with no downstream consumers)"
	}
	return ""
}

// DefaultChecks is the full risk-check set named in the component design.
func DefaultChecks() map[string]RiskCheck {
	return map[string]RiskCheck{
		"external_dependency":  ExternalDependency,
		"high_uncertainty":     HighUncertainty,
		"long_critical_path":   LongCriticalPath,
		"novelty_gap":          NoveltyGap,
		"redundant_with_peers": RedundantWithPeers,
		"low_roi":              LowROI,
	}
}
