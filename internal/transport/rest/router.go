package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"surveybuddy/internal/cache"
	"surveybuddy/internal/service"
	"surveybuddy/internal/transport/rest/handler"
	"surveybuddy/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	ChatService *service.ChatService
	Settings    cache.SettingsCache
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	chatHandler := handler.NewChatHandler(c.ChatService)
	surveyHandler := handler.NewSurveyHandler(c.ChatService)
	settingsHandler := handler.NewSettingsHandler(c.Settings)
	wsHandler := ws.NewHandler(c.WSHub, c.ChatService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Session and chat routes
	v1.HandleFunc("/sessions", chatHandler.CreateSession).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions", chatHandler.ListSessions).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/messages", chatHandler.ListMessages).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/messages", chatHandler.SendMessage).Methods("POST", "OPTIONS")

	// Survey builder routes
	v1.HandleFunc("/sessions/{id}/survey", surveyHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/goal", surveyHandler.SetStudyGoal).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions", surveyHandler.AddQuestion).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions", surveyHandler.DeleteQuestions).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/shuffle", surveyHandler.Shuffle).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{index:[0-9]+}", surveyHandler.EditQuestion).Methods("PUT", "PATCH", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{index:[0-9]+}", surveyHandler.DeleteQuestion).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/duplicate", surveyHandler.DuplicateQuestion).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/toggle-required", surveyHandler.ToggleRequired).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/choices", surveyHandler.AddChoice).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/choices/{choiceId}", surveyHandler.UpdateChoice).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/choices/{choiceId}", surveyHandler.DeleteChoice).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/conditions", surveyHandler.AddCondition).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/conditions/{conditionId}", surveyHandler.UpdateCondition).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/survey/questions/{questionId}/conditions/{conditionId}", surveyHandler.DeleteCondition).Methods("DELETE", "OPTIONS")

	// Settings routes
	v1.HandleFunc("/settings/customization", settingsHandler.GetCustomization).Methods("GET", "OPTIONS")
	v1.HandleFunc("/settings/customization", settingsHandler.SetCustomization).Methods("PUT", "OPTIONS")

	// WebSocket route
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
