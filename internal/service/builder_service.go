package service

import (
	"math/rand"
	"strings"
	"sync"

	"surveybuddy/internal/model"
)

// BuilderService owns one session's survey and is its single mutation choke
// point: builder UI actions and extracted directive batches both go through
// it. Operations apply fully or not at all, and the builder itself performs
// no I/O.
type BuilderService struct {
	mu     sync.Mutex
	survey *model.Survey
	alloc  *model.IDAllocator
}

// NewBuilderService creates a builder around an empty survey.
func NewBuilderService() *BuilderService {
	return &BuilderService{
		survey: &model.Survey{},
		alloc:  model.NewIDAllocator(),
	}
}

// Survey returns a deep-copy snapshot of the current survey.
func (b *BuilderService) Survey() *model.Survey {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.survey.Clone()
}

// AddQuestion appends a question built from the spec and returns a copy of
// it. It never fails: empty text is legal (the UI renders it as "Untitled
// question") and missing or empty choices yield one empty placeholder choice.
func (b *BuilderService) AddQuestion(spec *model.QuestionSpec) model.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.buildQuestion(spec)
	b.survey.Questions = append(b.survey.Questions, q)
	return q.Clone()
}

// DeleteQuestions removes every question whose current 1-based position is in
// indices. All positions are resolved against the order before any removal in
// the batch; out-of-range values are silently ignored. Returns the number of
// questions removed.
func (b *BuilderService) DeleteQuestions(indices []int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteQuestions(indices)
}

// EditQuestion applies only the fields present in spec to the question at the
// 1-based index. A present choices list fully replaces the prior choices with
// fresh identifiers; a present-but-empty list falls back to one empty choice.
// Out-of-range index is a no-op.
func (b *BuilderService) EditQuestion(index int, spec *model.QuestionSpec) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editQuestion(index, spec)
}

// SetStudyGoal replaces the study goal with the trimmed text. An empty trim
// is rejected and leaves the goal unchanged, guarding against accidental
// wipes from conversational noise.
func (b *BuilderService) SetStudyGoal(text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setStudyGoal(text)
}

// DuplicateQuestion inserts a deep copy of the question immediately after the
// source. The copy gets new identifiers throughout; condition source
// references are kept as-is since they point at other questions. Returns nil
// if the source does not exist.
func (b *BuilderService) DuplicateQuestion(id string) *model.Question {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, q := range b.survey.Questions {
		if q.ID != id {
			continue
		}
		dup := q.Clone()
		dup.ID = b.alloc.QuestionID()
		for j := range dup.Choices {
			dup.Choices[j].ID = b.alloc.ChoiceID()
		}
		for j := range dup.Conditions {
			dup.Conditions[j].ID = b.alloc.ConditionID()
		}

		b.survey.Questions = append(b.survey.Questions, model.Question{})
		copy(b.survey.Questions[i+2:], b.survey.Questions[i+1:])
		b.survey.Questions[i+1] = dup

		out := dup.Clone()
		return &out
	}
	return nil
}

// ToggleRequired flips the required flag of the question with the given id.
func (b *BuilderService) ToggleRequired(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if q := b.find(id); q != nil {
		q.Required = !q.Required
		return true
	}
	return false
}

// Shuffle reorders the questions with a uniform random permutation
// (Fisher-Yates).
func (b *BuilderService) Shuffle() {
	b.mu.Lock()
	defer b.mu.Unlock()

	qs := b.survey.Questions
	for i := len(qs) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

// AddChoice appends an empty choice to the question and returns a copy of it.
func (b *BuilderService) AddChoice(questionID string) *model.Choice {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.find(questionID)
	if q == nil {
		return nil
	}
	choice := model.Choice{ID: b.alloc.ChoiceID()}
	q.Choices = append(q.Choices, choice)
	return &choice
}

// UpdateChoice sets the text of one choice.
func (b *BuilderService) UpdateChoice(questionID, choiceID, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.find(questionID)
	if q == nil {
		return false
	}
	for i := range q.Choices {
		if q.Choices[i].ID == choiceID {
			q.Choices[i].Text = text
			return true
		}
	}
	return false
}

// DeleteChoice removes one choice. Deleting the last remaining choice is a
// no-op: a question always has at least one.
func (b *BuilderService) DeleteChoice(questionID, choiceID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.find(questionID)
	if q == nil || len(q.Choices) <= 1 {
		return false
	}
	for i := range q.Choices {
		if q.Choices[i].ID == choiceID {
			q.Choices = append(q.Choices[:i], q.Choices[i+1:]...)
			return true
		}
	}
	return false
}

// AddCondition attaches a display condition to the question. The source
// reference is weak and not validated against existing questions; a dangling
// reference renders as unresolved. An operator outside the fixed set is
// rejected.
func (b *BuilderService) AddCondition(questionID, sourceID string, op model.ConditionOperator, value string) *model.Condition {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.find(questionID)
	if q == nil || !op.Valid() {
		return nil
	}
	cond := model.Condition{
		ID:       b.alloc.ConditionID(),
		SourceID: sourceID,
		Operator: op,
		Value:    value,
	}
	q.Conditions = append(q.Conditions, cond)
	return &cond
}

// UpdateCondition replaces the source, operator and value of one condition.
func (b *BuilderService) UpdateCondition(questionID, conditionID, sourceID string, op model.ConditionOperator, value string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.find(questionID)
	if q == nil || !op.Valid() {
		return false
	}
	for i := range q.Conditions {
		if q.Conditions[i].ID == conditionID {
			q.Conditions[i].SourceID = sourceID
			q.Conditions[i].Operator = op
			q.Conditions[i].Value = value
			return true
		}
	}
	return false
}

// DeleteCondition removes one condition.
func (b *BuilderService) DeleteCondition(questionID, conditionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.find(questionID)
	if q == nil {
		return false
	}
	for i := range q.Conditions {
		if q.Conditions[i].ID == conditionID {
			q.Conditions = append(q.Conditions[:i], q.Conditions[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyCommands applies one extracted directive batch under a single lock
// hold: goal first, then adds, then all deletes as one snapshot batch, then
// edits with their indices resolved at the moment of application. A dropped
// command contributes no mutation. Returns the number of commands that
// mutated the survey.
func (b *BuilderService) ApplyCommands(commands []model.Command) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	applied := 0
	var deletes []int

	for _, cmd := range commands {
		switch cmd.Kind {
		case model.CommandStudyGoal:
			if b.setStudyGoal(cmd.Goal) {
				applied++
			}
		case model.CommandAddQuestion:
			b.survey.Questions = append(b.survey.Questions, b.buildQuestion(cmd.Spec))
			applied++
		case model.CommandDeleteQuestion:
			deletes = append(deletes, cmd.Index)
		}
	}

	applied += b.deleteQuestions(deletes)

	for _, cmd := range commands {
		if cmd.Kind == model.CommandEditQuestion && b.editQuestion(cmd.Index, cmd.Spec) {
			applied++
		}
	}
	return applied
}

// Callers of the unexported mutations hold b.mu.

func (b *BuilderService) find(id string) *model.Question {
	for i := range b.survey.Questions {
		if b.survey.Questions[i].ID == id {
			return &b.survey.Questions[i]
		}
	}
	return nil
}

func (b *BuilderService) buildQuestion(spec *model.QuestionSpec) model.Question {
	q := model.Question{ID: b.alloc.QuestionID()}
	if spec != nil {
		if spec.Text != nil {
			q.Text = *spec.Text
		}
		if spec.Description != nil {
			q.Description = *spec.Description
		}
		if spec.Required != nil {
			q.Required = *spec.Required
		}
		if spec.Choices != nil {
			q.Choices = b.buildChoices(*spec.Choices)
		}
	}
	if len(q.Choices) == 0 {
		q.Choices = b.buildChoices(nil)
	}
	return q
}

func (b *BuilderService) buildChoices(texts []string) []model.Choice {
	if len(texts) == 0 {
		texts = []string{""}
	}
	choices := make([]model.Choice, len(texts))
	for i, text := range texts {
		choices[i] = model.Choice{ID: b.alloc.ChoiceID(), Text: text}
	}
	return choices
}

func (b *BuilderService) deleteQuestions(indices []int) int {
	doomed := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx >= 1 && idx <= len(b.survey.Questions) {
			doomed[idx] = true
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	kept := make([]model.Question, 0, len(b.survey.Questions)-len(doomed))
	for i, q := range b.survey.Questions {
		if !doomed[i+1] {
			kept = append(kept, q)
		}
	}
	b.survey.Questions = kept
	return len(doomed)
}

func (b *BuilderService) editQuestion(index int, spec *model.QuestionSpec) bool {
	if spec == nil || index < 1 || index > len(b.survey.Questions) {
		return false
	}
	q := &b.survey.Questions[index-1]
	if spec.Text != nil {
		q.Text = *spec.Text
	}
	if spec.Description != nil {
		q.Description = *spec.Description
	}
	if spec.Required != nil {
		q.Required = *spec.Required
	}
	if spec.Choices != nil {
		q.Choices = b.buildChoices(*spec.Choices)
	}
	return true
}

func (b *BuilderService) setStudyGoal(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	b.survey.StudyGoal = trimmed
	return true
}
