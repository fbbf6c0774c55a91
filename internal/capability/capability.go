// Package capability defines the CapabilityRegistry and BranchRegistry
// external-collaborator contracts (§6.1) used by the audit phase function,
// plus one concrete, file-backed implementation of each so the phase
// functions can be exercised end-to-end without a real backend.
package capability

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one (component, category, value) capability fact.
type Entry struct {
	Component string `yaml:"component"`
	Category  string `yaml:"category"`
	Value     string `yaml:"value"`
}

// Registry answers queries about what capabilities already exist.
type Registry interface {
	Has(component, category, value string) bool
	Get(component, category string) (string, bool)
	Search(keyword string) []Entry
	// IsDevelopable reports whether a component can have new tasks created
	// against it. Absent components default to true.
	IsDevelopable(component string) bool
}

// BranchEntry describes one in-progress branch targeting a capability.
type BranchEntry struct {
	Branch       string   `yaml:"branch"`
	Component    string   `yaml:"component"`
	Capabilities []string `yaml:"capabilities"`
}

// BranchRegistry answers queries about work already in flight on other
// branches, so audit does not duplicate it.
type BranchRegistry interface {
	GetInProgress(component string) []BranchEntry
	HasInProgress(capabilityKeyword string) bool
}

// FileRegistry is a YAML-fixture-backed Registry.
type FileRegistry struct {
	entries           []Entry
	nonDevelopable    map[string]bool
}

// FileRegistryFixture is the on-disk shape loaded by LoadFileRegistry.
type FileRegistryFixture struct {
	Entries        []Entry  `yaml:"entries"`
	NonDevelopable []string `yaml:"non_developable"`
}

// LoadFileRegistry reads a YAML fixture from path.
func LoadFileRegistry(path string) (*FileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx FileRegistryFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	return NewFileRegistry(fx), nil
}

// NewFileRegistry builds a FileRegistry from an in-memory fixture.
func NewFileRegistry(fx FileRegistryFixture) *FileRegistry {
	nd := make(map[string]bool, len(fx.NonDevelopable))
	for _, c := range fx.NonDevelopable {
		nd[c] = true
	}
	return &FileRegistry{entries: fx.Entries, nonDevelopable: nd}
}

// Has reports whether an exact (component, category, value) entry exists.
func (r *FileRegistry) Has(component, category, value string) bool {
	for _, e := range r.entries {
		if e.Component == component && e.Category == category && e.Value == value {
			return true
		}
	}
	return false
}

// Get returns the first value recorded for (component, category).
func (r *FileRegistry) Get(component, category string) (string, bool) {
	for _, e := range r.entries {
		if e.Component == component && e.Category == category {
			return e.Value, true
		}
	}
	return "", false
}

// Search returns every entry whose component, category, or value contains
// keyword (case-insensitive).
func (r *FileRegistry) Search(keyword string) []Entry {
	kw := strings.ToLower(keyword)
	var out []Entry
	for _, e := range r.entries {
		if strings.Contains(strings.ToLower(e.Component), kw) ||
			strings.Contains(strings.ToLower(e.Category), kw) ||
			strings.Contains(strings.ToLower(e.Value), kw) {
			out = append(out, e)
		}
	}
	return out
}

// IsDevelopable defaults to true when the component is not named in the
// registry's non-developable list, per §6.1.
func (r *FileRegistry) IsDevelopable(component string) bool {
	return !r.nonDevelopable[component]
}

// FileBranchRegistry is a YAML-fixture-backed BranchRegistry.
type FileBranchRegistry struct {
	branches []BranchEntry
}

// LoadFileBranchRegistry reads a YAML fixture from path.
func LoadFileBranchRegistry(path string) (*FileBranchRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var branches []BranchEntry
	if err := yaml.Unmarshal(data, &branches); err != nil {
		return nil, err
	}
	return &FileBranchRegistry{branches: branches}, nil
}

// NewFileBranchRegistry builds a FileBranchRegistry from an in-memory list
// of branch entries (an empty list for "nothing in progress").
func NewFileBranchRegistry(branches []BranchEntry) *FileBranchRegistry {
	return &FileBranchRegistry{branches: branches}
}

// GetInProgress returns every branch entry targeting component.
func (r *FileBranchRegistry) GetInProgress(component string) []BranchEntry {
	var out []BranchEntry
	for _, b := range r.branches {
		if b.Component == component {
			out = append(out, b)
		}
	}
	return out
}

// HasInProgress reports whether any branch's target capabilities include
// capabilityKeyword.
func (r *FileBranchRegistry) HasInProgress(capabilityKeyword string) bool {
	for _, b := range r.branches {
		for _, c := range b.Capabilities {
			if c == capabilityKeyword {
				return true
			}
		}
	}
	return false
}
