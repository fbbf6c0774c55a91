package task

import "testing"

func TestValidateStructRequiresIDAndTitle(t *testing.T) {
	valid := New("T1", "has a title")
	if err := valid.ValidateStruct(); err != nil {
		t.Errorf("expected valid task to pass, got %v", err)
	}

	missingTitle := New("T1", "")
	if err := missingTitle.ValidateStruct(); err == nil {
		t.Errorf("expected missing title to fail validation")
	}

	missingID := New("", "a title")
	if err := missingID.ValidateStruct(); err == nil {
		t.Errorf("expected missing id to fail validation")
	}
}
