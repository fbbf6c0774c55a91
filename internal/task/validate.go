package task

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct checks t against its `validate` struct tags (currently
// ID and Title required). AppendTask calls it, so a task constructed with
// zero-value fields is refused before it joins the state.
func (t *Task) ValidateStruct() error {
	return validate.Struct(t)
}
