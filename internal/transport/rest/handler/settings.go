package handler

import (
	"encoding/json"
	"net/http"

	"surveybuddy/internal/cache"
)

// SettingsHandler handles the operator customization endpoints
type SettingsHandler struct {
	settings cache.SettingsCache
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings cache.SettingsCache) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// CustomizationRequest is the request body for updating the customization
type CustomizationRequest struct {
	Customization string `json:"customization"`
}

// GetCustomization handles GET /v1/settings/customization
func (h *SettingsHandler) GetCustomization(w http.ResponseWriter, r *http.Request) {
	value, err := h.settings.GetCustomization(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"customization": value})
}

// SetCustomization handles PUT /v1/settings/customization
func (h *SettingsHandler) SetCustomization(w http.ResponseWriter, r *http.Request) {
	var req CustomizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.SetCustomization(r.Context(), req.Customization); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"customization": req.Customization})
}
