package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybuddy/internal/model"
)

func str(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func choiceList(texts ...string) *[]string { return &texts }

// seedBuilder creates a builder with n questions labeled Q1..Qn.
func seedBuilder(t *testing.T, n int) *BuilderService {
	t.Helper()
	b := NewBuilderService()
	for i := 1; i <= n; i++ {
		b.AddQuestion(&model.QuestionSpec{Text: str(questionLabel(i))})
	}
	return b
}

func questionLabel(i int) string {
	return string(rune('A'+i-1)) + " question"
}

func questionTexts(s *model.Survey) []string {
	texts := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		texts[i] = q.Text
	}
	return texts
}

func TestAddQuestionDefaults(t *testing.T) {
	b := NewBuilderService()

	q := b.AddQuestion(nil)

	assert.Empty(t, q.Text)
	assert.False(t, q.Required)
	require.Len(t, q.Choices, 1)
	assert.Empty(t, q.Choices[0].Text)
	assert.NotEmpty(t, q.Choices[0].ID)
}

func TestAddQuestionFromSpec(t *testing.T) {
	b := NewBuilderService()

	q := b.AddQuestion(&model.QuestionSpec{
		Text:        str("How often do you share?"),
		Description: str("Be honest"),
		Required:    boolPtr(true),
		Choices:     choiceList("Daily", "Weekly"),
	})

	assert.Equal(t, "How often do you share?", q.Text)
	assert.Equal(t, "Be honest", q.Description)
	assert.True(t, q.Required)
	require.Len(t, q.Choices, 2)
	assert.Equal(t, "Weekly", q.Choices[1].Text)
}

func TestDeleteQuestionsResolvesAgainstPreCallOrder(t *testing.T) {
	for _, indices := range [][]int{{2, 4}, {4, 2}, {4, 2, 4}} {
		b := seedBuilder(t, 5)

		removed := b.DeleteQuestions(indices)

		assert.Equal(t, 2, removed)
		assert.Equal(t, []string{
			questionLabel(1), questionLabel(3), questionLabel(5),
		}, questionTexts(b.Survey()))
	}
}

func TestDeleteQuestionsIgnoresOutOfRange(t *testing.T) {
	b := seedBuilder(t, 2)

	removed := b.DeleteQuestions([]int{0, -1, 3, 99})

	assert.Equal(t, 0, removed)
	assert.Len(t, b.Survey().Questions, 2)
}

func TestEditQuestionPartialFields(t *testing.T) {
	b := seedBuilder(t, 1)

	ok := b.EditQuestion(1, &model.QuestionSpec{Description: str("added later")})

	require.True(t, ok)
	q := b.Survey().Questions[0]
	assert.Equal(t, questionLabel(1), q.Text) // untouched
	assert.Equal(t, "added later", q.Description)
}

func TestEditQuestionEmptyChoicesFallsBackToOne(t *testing.T) {
	b := NewBuilderService()
	b.AddQuestion(&model.QuestionSpec{Choices: choiceList("a", "b", "c")})

	ok := b.EditQuestion(1, &model.QuestionSpec{Choices: &[]string{}})

	require.True(t, ok)
	choices := b.Survey().Questions[0].Choices
	require.Len(t, choices, 1)
	assert.Empty(t, choices[0].Text)
}

func TestEditQuestionReplacesChoicesWithNewIDs(t *testing.T) {
	b := NewBuilderService()
	q := b.AddQuestion(&model.QuestionSpec{Choices: choiceList("old")})
	oldID := q.Choices[0].ID

	require.True(t, b.EditQuestion(1, &model.QuestionSpec{Choices: choiceList("new")}))

	choices := b.Survey().Questions[0].Choices
	require.Len(t, choices, 1)
	assert.Equal(t, "new", choices[0].Text)
	assert.NotEqual(t, oldID, choices[0].ID)
}

func TestEditQuestionOutOfRangeIsNoop(t *testing.T) {
	b := seedBuilder(t, 1)

	assert.False(t, b.EditQuestion(0, &model.QuestionSpec{Text: str("x")}))
	assert.False(t, b.EditQuestion(2, &model.QuestionSpec{Text: str("x")}))
	assert.Equal(t, questionLabel(1), b.Survey().Questions[0].Text)
}

func TestSetStudyGoalRejectsEmptyTrim(t *testing.T) {
	b := NewBuilderService()
	require.True(t, b.SetStudyGoal("  understand churn  "))
	assert.Equal(t, "understand churn", b.Survey().StudyGoal)

	assert.False(t, b.SetStudyGoal("   \n\t "))
	assert.Equal(t, "understand churn", b.Survey().StudyGoal)
}

func TestDuplicateQuestionDeepCopyWithNewIDs(t *testing.T) {
	b := seedBuilder(t, 2)
	src := b.Survey().Questions[0]
	b.AddCondition(src.ID, b.Survey().Questions[1].ID, model.OperatorEquals, "Yes")
	src = b.Survey().Questions[0]

	dup := b.DuplicateQuestion(src.ID)

	require.NotNil(t, dup)
	survey := b.Survey()
	require.Len(t, survey.Questions, 3)
	// Inserted immediately after the source
	assert.Equal(t, dup.ID, survey.Questions[1].ID)
	assert.Equal(t, src.Text, dup.Text)
	assert.NotEqual(t, src.ID, dup.ID)
	require.Len(t, dup.Choices, len(src.Choices))
	assert.NotEqual(t, src.Choices[0].ID, dup.Choices[0].ID)
	require.Len(t, dup.Conditions, 1)
	assert.NotEqual(t, src.Conditions[0].ID, dup.Conditions[0].ID)
	// The weak source reference is preserved, not remapped
	assert.Equal(t, src.Conditions[0].SourceID, dup.Conditions[0].SourceID)
}

func TestDuplicateQuestionUnknownID(t *testing.T) {
	b := seedBuilder(t, 1)
	assert.Nil(t, b.DuplicateQuestion("q_999"))
	assert.Len(t, b.Survey().Questions, 1)
}

func TestToggleRequired(t *testing.T) {
	b := seedBuilder(t, 1)
	id := b.Survey().Questions[0].ID

	require.True(t, b.ToggleRequired(id))
	assert.True(t, b.Survey().Questions[0].Required)
	require.True(t, b.ToggleRequired(id))
	assert.False(t, b.Survey().Questions[0].Required)
	assert.False(t, b.ToggleRequired("q_999"))
}

func TestShufflePreservesQuestions(t *testing.T) {
	b := seedBuilder(t, 8)
	before := b.Survey()

	b.Shuffle()

	after := b.Survey()
	require.Len(t, after.Questions, len(before.Questions))
	seen := make(map[string]bool)
	for _, q := range after.Questions {
		seen[q.ID] = true
	}
	for _, q := range before.Questions {
		assert.True(t, seen[q.ID], "question %s lost in shuffle", q.ID)
	}
}

func TestDeleteChoiceKeepsAtLeastOne(t *testing.T) {
	b := NewBuilderService()
	q := b.AddQuestion(&model.QuestionSpec{Choices: choiceList("a", "b")})

	require.True(t, b.DeleteChoice(q.ID, q.Choices[0].ID))
	remaining := b.Survey().Questions[0].Choices
	require.Len(t, remaining, 1)

	// Deleting the last remaining choice is a no-op
	assert.False(t, b.DeleteChoice(q.ID, remaining[0].ID))
	assert.Len(t, b.Survey().Questions[0].Choices, 1)
}

func TestChoiceAddAndUpdate(t *testing.T) {
	b := NewBuilderService()
	q := b.AddQuestion(nil)

	added := b.AddChoice(q.ID)
	require.NotNil(t, added)
	require.True(t, b.UpdateChoice(q.ID, added.ID, "Option 2"))

	choices := b.Survey().Questions[0].Choices
	require.Len(t, choices, 2)
	assert.Equal(t, "Option 2", choices[1].Text)
	assert.False(t, b.UpdateChoice(q.ID, "c_999", "x"))
}

func TestConditionCRUD(t *testing.T) {
	b := seedBuilder(t, 2)
	q1 := b.Survey().Questions[0]
	q2 := b.Survey().Questions[1]

	assert.Nil(t, b.AddCondition(q2.ID, q1.ID, "greater-than", "5"), "operator outside the fixed set")

	cond := b.AddCondition(q2.ID, q1.ID, model.OperatorContains, "music")
	require.NotNil(t, cond)

	require.True(t, b.UpdateCondition(q2.ID, cond.ID, q1.ID, model.OperatorNotEquals, "silence"))
	got := b.Survey().Questions[1].Conditions[0]
	assert.Equal(t, model.OperatorNotEquals, got.Operator)
	assert.Equal(t, "silence", got.Value)

	require.True(t, b.DeleteCondition(q2.ID, cond.ID))
	assert.Empty(t, b.Survey().Questions[1].Conditions)
}

func TestConditionSourceMayDangle(t *testing.T) {
	b := seedBuilder(t, 2)
	q1 := b.Survey().Questions[0]
	q2 := b.Survey().Questions[1]
	b.AddCondition(q2.ID, q1.ID, model.OperatorEquals, "Yes")

	b.DeleteQuestions([]int{1})

	survey := b.Survey()
	require.Len(t, survey.Questions, 1)
	require.Len(t, survey.Questions[0].Conditions, 1)
	// The weak reference stays behind and renders as unresolved
	assert.Equal(t, q1.ID, survey.Questions[0].Conditions[0].SourceID)
}

func TestQuestionIDsNeverReused(t *testing.T) {
	b := NewBuilderService()
	first := b.AddQuestion(nil)
	b.DeleteQuestions([]int{1})
	second := b.AddQuestion(nil)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestApplyCommandsBatch(t *testing.T) {
	b := seedBuilder(t, 3)

	applied := b.ApplyCommands([]model.Command{
		{Kind: model.CommandStudyGoal, Goal: "new goal"},
		{Kind: model.CommandAddQuestion, Spec: &model.QuestionSpec{Text: str("added")}},
		{Kind: model.CommandDeleteQuestion, Index: 1},
		{Kind: model.CommandDeleteQuestion, Index: 2},
		{Kind: model.CommandEditQuestion, Index: 1, Spec: &model.QuestionSpec{Text: str("edited")}},
	})

	assert.Equal(t, 5, applied)
	survey := b.Survey()
	assert.Equal(t, "new goal", survey.StudyGoal)
	// Both deletes hit the pre-batch positions 1 and 2; the edit then resolved
	// index 1 against the post-delete order.
	require.Len(t, survey.Questions, 2)
	assert.Equal(t, "edited", survey.Questions[0].Text)
	assert.Equal(t, "added", survey.Questions[1].Text)
}

func TestApplyCommandsDropsInvalidSilently(t *testing.T) {
	b := seedBuilder(t, 1)

	applied := b.ApplyCommands([]model.Command{
		{Kind: model.CommandStudyGoal, Goal: "   "},
		{Kind: model.CommandDeleteQuestion, Index: 9},
		{Kind: model.CommandEditQuestion, Index: 5, Spec: &model.QuestionSpec{Text: str("x")}},
	})

	assert.Equal(t, 0, applied)
	assert.Len(t, b.Survey().Questions, 1)
}
