package service

import (
	"fmt"
	"strings"

	"surveybuddy/internal/model"
)

const defaultSurveyTitle = "Share Behavior Research"

const defaultStudyGoal = "The goal of this study is to understand why some creators delay or avoid sharing their Linktree."

// defaultQuestions seed every new session's survey.
var defaultQuestions = []string{
	"What's been holding you back from sharing your Linktree so far?",
	"Which of the following best describes your current sharing status?",
}

// seedConversation is the canned onboarding exchange every new session starts
// from, so the model knows what was already discussed.
var seedConversation = []struct {
	role    model.Role
	content string
}{
	{
		role:    model.RoleAssistant,
		content: "Done! Your study is ready to review and launch.\nWhat would you like to do next?",
	},
	{
		role:    model.RoleUser,
		content: "Buddy, review question 2 and 4 and make it matching MyCompany tone of voice",
	},
	{
		role: model.RoleAssistant,
		content: `## 2. Answer options: recommendations

Current options are logically ordered, but:
- Some are wordy
- "Once or twice" vs "occasionally" can feel fuzzy
- "I'm not sure" is useful but should be last (you already did this right 👍)

## Recommended answer set (clean + behavioral)

### Best overall set
- I haven't shared my Linktree yet
- I've shared it a few times, but not consistently
- I share it occasionally
- I share it regularly
- I'm not sure

### Why this works
- "Yet" subtly removes shame`,
	},
}

// buildSystemPrompt synthesizes the system message from the survey title,
// study goal, the full current question list and the operator's optional
// customization string.
func buildSystemPrompt(title string, survey *model.Survey, customization string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an AI Editing Agent for a survey builder platform. The current survey is called %q.\n\n", title)
	fmt.Fprintf(&sb, "The study goal is: %q\n\n", survey.StudyGoal)

	sb.WriteString("Current survey questions:\n")
	for i, q := range survey.Questions {
		text := q.Text
		if text == "" {
			text = "Untitled question"
		}
		fmt.Fprintf(&sb, "%d. %q\n", i+1, text)
		if q.Description != "" {
			fmt.Fprintf(&sb, "   Description: %s\n", q.Description)
		}
		var choices []string
		for _, c := range q.Choices {
			if c.Text != "" {
				choices = append(choices, c.Text)
			}
		}
		if len(choices) > 0 {
			fmt.Fprintf(&sb, "   Choices: %s\n", strings.Join(choices, " | "))
		}
	}

	sb.WriteString(`
You help users review and improve their survey questions, answer options, and overall survey structure. You can:
- Review and suggest improvements to survey questions
- Recommend better answer options
- Adjust the tone of voice to match a brand
- Provide recommendations on question ordering and logic
- Help with display conditions and skip logic

Use markdown formatting: **bold**, bullet points (- ), and headers (##, ###) for clear, structured responses. Be concise and actionable.

IMPORTANT: When the user asks you to change the survey, include the matching tag in your response so the system can apply it:
[STUDY_GOAL: <new goal text>] when the user explicitly asks to change the study goal.
[ADD_QUESTION: {"text":"...","description":"...","required":false,"choices":["..."]}] to add a question.
[DELETE_QUESTION: <1-based question number>] to delete a question.
[EDIT_QUESTION: {"index":<1-based question number>,"text":"...","choices":["..."]}] to edit a question; include only the fields to change.
Place tags at the end of your response. Only include a tag when the user explicitly asks for that change.
`)

	if customization != "" {
		fmt.Fprintf(&sb, "\nAdditional instructions from the survey owner:\n%s\n", customization)
	}
	return sb.String()
}

// buildRequestMessages assembles the completion request: the synthesized
// system message followed by the conversation history in order.
func buildRequestMessages(title string, survey *model.Survey, customization string, history []model.ChatMessage) []ChatRequestMessage {
	messages := make([]ChatRequestMessage, 0, len(history)+1)
	messages = append(messages, ChatRequestMessage{
		Role:    string(model.RoleSystem),
		Content: buildSystemPrompt(title, survey, customization),
	})
	for _, msg := range history {
		messages = append(messages, ChatRequestMessage{
			Role:    string(msg.Role),
			Content: requestContent(msg),
		})
	}
	return messages
}

// requestContent folds successfully extracted attachment text into the
// message content sent to the model. Failed attachments are skipped; their
// error badge is a UI concern.
func requestContent(msg model.ChatMessage) string {
	if len(msg.Attachments) == 0 {
		return msg.Content
	}
	var sb strings.Builder
	sb.WriteString(msg.Content)
	for _, att := range msg.Attachments {
		if att.Error != "" || att.Text == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n\n[Attached file: %s]\n%s", att.Name, att.Text)
	}
	return sb.String()
}
