package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"surveybuddy/internal/service"
)

// 32 MB, matching the extractor service's upload cap
const maxUploadBytes = 32 << 20

// ChatHandler handles session and message endpoints
type ChatHandler struct {
	chatSvc *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// SendMessageRequest is the JSON request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text"`
}

// CreateSession handles POST /v1/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := h.chatSvc.CreateSession(r.Context(), req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"session": session})
}

// ListSessions handles GET /v1/sessions
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatSvc.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// ListMessages handles GET /v1/sessions/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	messages, err := h.chatSvc.Messages(r.Context(), id)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// SendMessage handles POST /v1/sessions/{id}/messages. The body is either
// plain JSON or, when files ride along, multipart form data with a "text"
// field and any number of "files" parts. The response is the finalized
// assistant message; deltas stream over the session websocket meanwhile.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	text, files, err := parseSendMessage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.chatSvc.SendMessage(r.Context(), id, text, files)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if errors.Is(err, service.ErrExchangeInFlight) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": reply})
}

func parseSendMessage(r *http.Request) (string, []service.UploadedFile, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", nil, errors.New("invalid request body")
		}
		return req.Text, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, errors.New("invalid multipart body")
	}

	var files []service.UploadedFile
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			return "", nil, errors.New("failed to read uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return "", nil, errors.New("failed to read uploaded file")
		}
		files = append(files, service.UploadedFile{Name: header.Filename, Data: data})
	}
	return r.FormValue("text"), files, nil
}
