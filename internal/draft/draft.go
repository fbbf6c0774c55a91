// Package draft defines Draft, the specialist's output for a task.
package draft

// Draft is the output of one specialist execution for a task.
type Draft struct {
	TaskID      string            `json:"task_id"`
	Files       map[string]string `json:"files"`
	TestFiles   map[string]string `json:"test_files"`
	Explanation string            `json:"explanation"`
}

// New returns an empty draft for a task, with non-nil maps.
func New(taskID string) *Draft {
	return &Draft{
		TaskID:    taskID,
		Files:     map[string]string{},
		TestFiles: map[string]string{},
	}
}

// Valid reports whether the draft satisfies the specialist contract: it
// must populate at least one file entry or an explanation.
func (d *Draft) Valid() bool {
	return len(d.Files) > 0 || len(d.TestFiles) > 0 || d.Explanation != ""
}

// Clone returns a deep copy, so a draft handed to a backend brief is never
// a live pointer into state.
func (d *Draft) Clone() *Draft {
	c := &Draft{TaskID: d.TaskID, Explanation: d.Explanation}
	c.Files = make(map[string]string, len(d.Files))
	for k, v := range d.Files {
		c.Files[k] = v
	}
	c.TestFiles = make(map[string]string, len(d.TestFiles))
	for k, v := range d.TestFiles {
		c.TestFiles[k] = v
	}
	return c
}
