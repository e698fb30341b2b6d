package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveybuddy/internal/model"
	"surveybuddy/internal/service"
)

// SurveyHandler handles the builder endpoints of a session's survey. Every
// mutation goes through the session's builder and pushes the fresh survey
// snapshot to the session's websocket clients.
type SurveyHandler struct {
	chatSvc *service.ChatService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(chatSvc *service.ChatService) *SurveyHandler {
	return &SurveyHandler{chatSvc: chatSvc}
}

// StudyGoalRequest is the request body for setting the study goal
type StudyGoalRequest struct {
	Goal string `json:"goal"`
}

// ChoiceRequest is the request body for choice text updates
type ChoiceRequest struct {
	Text string `json:"text"`
}

// ConditionRequest is the request body for condition create and update
type ConditionRequest struct {
	SourceID string `json:"sourceId"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

func (h *SurveyHandler) builder(w http.ResponseWriter, r *http.Request) (*service.BuilderService, string, bool) {
	id := mux.Vars(r)["id"]
	builder, err := h.chatSvc.Builder(id)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, "", false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, "", false
	}
	return builder, id, true
}

// Get handles GET /v1/sessions/{id}/survey
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	builder, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// SetStudyGoal handles PUT /v1/sessions/{id}/survey/goal
func (h *SurveyHandler) SetStudyGoal(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	var req StudyGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !builder.SetStudyGoal(req.Goal) {
		writeError(w, http.StatusBadRequest, "study goal must not be empty")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// AddQuestion handles POST /v1/sessions/{id}/survey/questions
func (h *SurveyHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	var spec model.QuestionSpec
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	question := builder.AddQuestion(&spec)

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"question": question})
}

// EditQuestion handles PUT /v1/sessions/{id}/survey/questions/{index}
func (h *SurveyHandler) EditQuestion(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}

	var spec model.QuestionSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !builder.EditQuestion(index, &spec) {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// DeleteQuestion handles DELETE /v1/sessions/{id}/survey/questions/{index}
func (h *SurveyHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}
	if builder.DeleteQuestions([]int{index}) == 0 {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// DeleteQuestionsRequest is the request body for batch question deletion.
// Indices are 1-based positions resolved against the order before any removal.
type DeleteQuestionsRequest struct {
	Indices []int `json:"indices"`
}

// DeleteQuestions handles DELETE /v1/sessions/{id}/survey/questions
func (h *SurveyHandler) DeleteQuestions(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	var req DeleteQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	removed := builder.DeleteQuestions(req.Indices)
	if removed > 0 {
		h.chatSvc.BroadcastSurvey(id)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed, "survey": builder.Survey()})
}

// DuplicateQuestion handles POST /v1/sessions/{id}/survey/questions/{questionId}/duplicate
func (h *SurveyHandler) DuplicateQuestion(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	question := builder.DuplicateQuestion(mux.Vars(r)["questionId"])
	if question == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"question": question})
}

// ToggleRequired handles POST /v1/sessions/{id}/survey/questions/{questionId}/toggle-required
func (h *SurveyHandler) ToggleRequired(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	if !builder.ToggleRequired(mux.Vars(r)["questionId"]) {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// Shuffle handles POST /v1/sessions/{id}/survey/questions/shuffle
func (h *SurveyHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	builder.Shuffle()

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// AddChoice handles POST /v1/sessions/{id}/survey/questions/{questionId}/choices
func (h *SurveyHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	choice := builder.AddChoice(mux.Vars(r)["questionId"])
	if choice == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"choice": choice})
}

// UpdateChoice handles PUT /v1/sessions/{id}/survey/questions/{questionId}/choices/{choiceId}
func (h *SurveyHandler) UpdateChoice(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	if !builder.UpdateChoice(vars["questionId"], vars["choiceId"], req.Text) {
		writeError(w, http.StatusNotFound, "choice not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// DeleteChoice handles DELETE /v1/sessions/{id}/survey/questions/{questionId}/choices/{choiceId}
func (h *SurveyHandler) DeleteChoice(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if !builder.DeleteChoice(vars["questionId"], vars["choiceId"]) {
		writeError(w, http.StatusConflict, "choice not found or last remaining choice")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// AddCondition handles POST /v1/sessions/{id}/survey/questions/{questionId}/conditions
func (h *SurveyHandler) AddCondition(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	var req ConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cond := builder.AddCondition(mux.Vars(r)["questionId"], req.SourceID, model.ConditionOperator(req.Operator), req.Value)
	if cond == nil {
		writeError(w, http.StatusBadRequest, "question not found or invalid operator")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"condition": cond})
}

// UpdateCondition handles PUT /v1/sessions/{id}/survey/questions/{questionId}/conditions/{conditionId}
func (h *SurveyHandler) UpdateCondition(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	var req ConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	if !builder.UpdateCondition(vars["questionId"], vars["conditionId"], req.SourceID, model.ConditionOperator(req.Operator), req.Value) {
		writeError(w, http.StatusBadRequest, "condition not found or invalid operator")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}

// DeleteCondition handles DELETE /v1/sessions/{id}/survey/questions/{questionId}/conditions/{conditionId}
func (h *SurveyHandler) DeleteCondition(w http.ResponseWriter, r *http.Request) {
	builder, id, ok := h.builder(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if !builder.DeleteCondition(vars["questionId"], vars["conditionId"]) {
		writeError(w, http.StatusNotFound, "condition not found")
		return
	}

	h.chatSvc.BroadcastSurvey(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"survey": builder.Survey()})
}
