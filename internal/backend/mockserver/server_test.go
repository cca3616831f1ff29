package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	rec := serve(t, New(Options{}, zerolog.Nop()), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RequiresUser(t *testing.T) {
	s := New(Options{Seed: true}, zerolog.Nop())

	for _, target := range []string{"/api/standup/today", "/api/projects", "/api/calendar/events"} {
		rec := serve(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := serve(t, s, http.MethodPost, "/api/standup/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TodayUsesSnakeCase(t *testing.T) {
	s := New(Options{Seed: true}, zerolog.Nop())
	serve(t, s, http.MethodPost, "/api/standup/analyze", `{"user_email": "ada@example.com"}`)

	rec := serve(t, s, http.MethodGet, "/api/standup/today?user_email=ada@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["has_standup"])
	assert.Contains(t, body, "the_one_thing")
	assert.Contains(t, body, "secondary_priorities")

	first := body["secondary_priorities"].([]any)[0].(map[string]any)
	assert.InDelta(t, 0.74, first["confidence"], 1e-9)
	assert.NotContains(t, first, "urgency")
}

func TestServer_UpdateProjectIDMismatch(t *testing.T) {
	s := New(Options{Seed: true}, zerolog.Nop())

	rec := serve(t, s, http.MethodPut, "/api/projects/board?user_email=ada@example.com", `{"id": "hiring", "goals": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_EventsDaysValidated(t *testing.T) {
	s := New(Options{Seed: true}, zerolog.Nop())

	rec := serve(t, s, http.MethodGet, "/api/calendar/events?user_email=ada@example.com&days=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Fail(t *testing.T) {
	s := New(Options{Seed: true}, zerolog.Nop())
	s.Fail(http.MethodGet, "/api/projects", http.StatusBadGateway)

	rec := serve(t, s, http.MethodGet, "/api/projects?user_email=ada@example.com", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	s.Fail(http.MethodGet, "/api/projects", 0)
	rec = serve(t, s, http.MethodGet, "/api/projects?user_email=ada@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDemoFixture(t *testing.T) {
	f := DemoFixture(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	assert.Equal(t, "Finish the Q3 board deck", f.Analysis.TheOneThing.Title)
	require.Len(t, f.Projects, 3)
	assert.Equal(t, "2025-03-12", f.Projects[0].Goals[0].Deadline)
	require.Len(t, f.Events, 4)
	assert.True(t, f.Events[2].Start.AllDay())
}

func TestListener_ServesRouter(t *testing.T) {
	l := NewListener(New(Options{}, zerolog.Nop()), "127.0.0.1:0")
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Shutdown(context.Background()) })

	assert.NotEmpty(t, l.Addr())

	resp, err := http.Get(l.URL() + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
