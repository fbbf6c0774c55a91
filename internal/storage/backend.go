// Package storage provides the persistence abstraction for a
// ProjectState: a single aggregate saved and loaded as a unit, per §6.4
// ("every field... persisted together; there is no partial-state load").
package storage

import "github.com/weavehq/weave/internal/state"

// Backend defines the storage operations a ProjectState persistence layer
// must support. Implementations must be safe for concurrent access.
type Backend interface {
	// Save persists the full state under key (normally the project id).
	Save(key string, s *state.ProjectState) error

	// Load reads the full state for key. It returns an error if no state
	// has been saved for key.
	Load(key string) (*state.ProjectState, error)

	// Exists reports whether a state has been saved for key.
	Exists(key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}
