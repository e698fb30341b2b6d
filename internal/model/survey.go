package model

// Survey is the live, UI-bound survey being edited in a chat session.
// Question order is meaningful: it is both display order and the 1-based
// addressing scheme used by wire-level directives. The survey itself is never
// persisted; it exists for the lifetime of its session.
type Survey struct {
	StudyGoal string     `json:"studyGoal"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy of the survey with identifiers preserved. Used to
// take the pre-batch snapshot directive application is evaluated against.
func (s *Survey) Clone() *Survey {
	out := &Survey{
		StudyGoal: s.StudyGoal,
		Questions: make([]Question, len(s.Questions)),
	}
	for i := range s.Questions {
		out.Questions[i] = s.Questions[i].Clone()
	}
	return out
}
