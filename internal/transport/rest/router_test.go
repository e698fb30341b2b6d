package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybuddy/internal/service"
	"surveybuddy/internal/transport/ws"
)

func testRouter() http.Handler {
	return NewRouter(&Container{
		ChatService: service.NewChatService(nil, nil, nil, nil, nil),
		WSHub:       ws.NewHub(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/v1/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSurveyForUnknownSession(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/sessions/nope/survey", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
