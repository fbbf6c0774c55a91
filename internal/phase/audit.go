package phase

import (
	"github.com/weavehq/weave/internal/audit"
	"github.com/weavehq/weave/internal/capability"
	"github.com/weavehq/weave/internal/state"
)

// ExtensionHints maps a term to the component it hints an extension onto,
// consulted in audit step 3 when neither the branch registry nor the
// capability registry has a direct hit.
type ExtensionHints map[string]string

// Audit queries the branch and capability registries for each term in
// keywords ∪ domain ∪ method, emitting one AuditItem per finding per
// §4.2. It requires the state to be in PhaseAudit and advances it to
// PhaseDecompose.
func Audit(s *state.ProjectState, branches capability.BranchRegistry, registry capability.Registry, hints ExtensionHints) error {
	if err := s.AssertPhase(state.PhaseAudit); err != nil {
		return err
	}

	terms := unionTerms(s.ParsedIntent)

	var items []audit.Item
	for _, term := range terms {
		if branches != nil {
			if matched := inProgressComponents(branches, term); len(matched) > 0 {
				for _, component := range matched {
					items = append(items, audit.Item{
						Component:   component,
						Status:      audit.StatusInProgress,
						Description: "branch in progress targets " + term,
						Details:     map[string]string{"matched_term": term},
					})
				}
				continue
			}
		}

		if registry != nil {
			if hits := registry.Search(term); len(hits) > 0 {
				for _, hit := range hits {
					items = append(items, audit.Item{
						Component:   hit.Component,
						Status:      audit.StatusAvailable,
						Description: "capability registry reports " + hit.Component + " handles " + term,
						Details:     map[string]string{"matched_term": term},
					})
				}
				continue
			}
		}

		hinted, hasHint := hints[term]
		if hasHint && registry != nil && hasComponent(registry, hinted) {
			items = append(items, audit.Item{
				Component:   hinted,
				Status:      audit.StatusExtensible,
				Description: "hinted extension of " + hinted + " for " + term,
				Details:     map[string]string{"matched_term": term},
			})
			continue
		}

		component := hinted
		if component == "" {
			component = term
		}
		items = append(items, audit.Item{
			Component:   component,
			Status:      audit.StatusMissing,
			Description: "no existing capability covers " + term,
			Details:     map[string]string{"matched_term": term},
		})
	}

	s.AuditItems = audit.Dedupe(items)
	s.AdvancePhase(state.PhaseDecompose)
	return nil
}

// unionTerms returns keywords ∪ domain ∪ method from parsed_intent, in
// first-appearance order with duplicates removed.
func unionTerms(parsedIntent map[string]any) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(key string) {
		vals, _ := parsedIntent[key].([]string)
		for _, v := range vals {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	add("keywords")
	add("domain")
	add("method")
	return out
}

func inProgressComponents(branches capability.BranchRegistry, term string) []string {
	if !branches.HasInProgress(term) {
		return nil
	}
	// HasInProgress confirms a match exists; recover which component(s) by
	// scanning every known component is not exposed on the interface, so
	// fall back to the term itself as the component identifier unless a
	// registry-specific implementation exposes richer detail via
	// GetInProgress using the term as a component name too.
	if entries := branches.GetInProgress(term); len(entries) > 0 {
		components := make([]string, 0, len(entries))
		for _, e := range entries {
			components = append(components, e.Component)
		}
		return components
	}
	return []string{term}
}

func hasComponent(registry capability.Registry, component string) bool {
	for _, e := range registry.Search(component) {
		if e.Component == component {
			return true
		}
	}
	return false
}
