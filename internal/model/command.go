package model

// CommandKind identifies a directive embedded in an assistant reply
type CommandKind string

const (
	CommandStudyGoal      CommandKind = "study_goal"
	CommandAddQuestion    CommandKind = "add_question"
	CommandDeleteQuestion CommandKind = "delete_question"
	CommandEditQuestion   CommandKind = "edit_question"
)

// QuestionSpec is the structured payload of ADD_QUESTION and EDIT_QUESTION
// directives. Pointer fields distinguish "absent" from "set to zero value" so
// an edit only touches the fields the directive names. Index is the 1-based
// position an edit targets; it is resolved against the survey at the moment
// the command is applied, never cached.
type QuestionSpec struct {
	Index       int       `json:"index,omitempty"`
	Text        *string   `json:"text,omitempty"`
	Description *string   `json:"description,omitempty"`
	Required    *bool     `json:"required,omitempty"`
	Choices     *[]string `json:"choices,omitempty"`
}

// Command is one validated directive ready to apply to the survey.
type Command struct {
	Kind  CommandKind
	Goal  string        // CommandStudyGoal
	Index int           // CommandDeleteQuestion; also mirrored from Spec.Index for edits
	Spec  *QuestionSpec // CommandAddQuestion, CommandEditQuestion
}
