package task

import (
	"fmt"
	"regexp"
	"strconv"
)

// idPattern matches "<prefix>-NNN" task ids, e.g. "FE-205" or "CORE-001".
var idPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)-(\d+)$`)

// ParseID splits a task id into its prefix and numeric sequence.
func ParseID(id string) (prefix string, seq int, ok bool) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// IDGenerator hands out sequential "<prefix>-NNN" ids for a single decompose
// run. It is not safe for concurrent use; decompose is a single-threaded
// pure transform.
type IDGenerator struct {
	prefix string
	next   int
	width  int
}

// NewIDGenerator creates a generator for the given prefix, starting at 1
// and zero-padding sequence numbers to width digits (minimum 3, per the
// "NNN" convention in the decompose spec).
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "TASK"
	}
	return &IDGenerator{prefix: prefix, next: 1, width: 3}
}

// Next returns the next sequential id and advances the generator.
func (g *IDGenerator) Next() string {
	id := g.format(g.next)
	g.next++
	return id
}

func (g *IDGenerator) format(n int) string {
	return fmt.Sprintf("%s-%0*d", g.prefix, g.width, n)
}

// Renumber reassigns sequential ids to tasks in their current order,
// rewriting every dependency/suspended_dependency/original_dependency and
// defer_trigger reference that named an old id. Used by decompose after
// sorting tasks by layer (§4.2: "Renumber ids to preserve order").
func Renumber(tasks []*Task, prefix string) {
	gen := NewIDGenerator(prefix)
	oldToNew := make(map[string]string, len(tasks))
	for _, t := range tasks {
		oldToNew[t.ID] = gen.Next()
	}
	remap := func(ids []string) []string {
		if ids == nil {
			return nil
		}
		out := make([]string, len(ids))
		for i, id := range ids {
			if n, ok := oldToNew[id]; ok {
				out[i] = n
			} else {
				out[i] = id
			}
		}
		return out
	}
	for _, t := range tasks {
		newID := oldToNew[t.ID]
		t.Dependencies = remap(t.Dependencies)
		t.OriginalDependencies = remap(t.OriginalDependencies)
		t.SuspendedDependencies = remap(t.SuspendedDependencies)
		if t.DeferTrigger != nil {
			if tag, cond, ok := splitTrigger(*t.DeferTrigger); ok {
				if n, ok := oldToNew[tag]; ok {
					tag = n
				}
				dt := tag + ":" + cond
				t.DeferTrigger = &dt
			}
		}
		t.ID = newID
	}
}

func splitTrigger(trigger string) (taskID, cond string, ok bool) {
	for i := 0; i < len(trigger); i++ {
		if trigger[i] == ':' {
			return trigger[:i], trigger[i+1:], true
		}
	}
	return "", "", false
}
