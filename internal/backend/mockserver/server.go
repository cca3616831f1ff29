// Package mockserver is an in-memory stand-in for the assistant backend. It
// serves the same routes as the real one so the dashboard can run and be
// tested without it.
package mockserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/focus"
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as a bearer token on every request.
	Token string
	// Seed fills every new user with the demo fixture.
	Seed bool
}

type statusRecord struct {
	ID     int
	Status focus.BackendStatus
	Body   json.RawMessage
}

type userData struct {
	analysis   focus.Payload
	analyzed   bool
	statuses   map[string]*statusRecord // by task title
	projects   []calendar.Project
	events     []calendar.Event
	statusSeen int
}

// Server holds the mock backend state.
type Server struct {
	opts Options
	log  zerolog.Logger
	now  func() time.Time

	mu     sync.Mutex
	users  map[string]*userData
	faults map[string]int // "METHOD /path" -> status code
	nextID int
}

// New creates a Server.
func New(opts Options, log zerolog.Logger) *Server {
	return &Server{
		opts:   opts,
		log:    log.With().Str("component", "mock-backend").Logger(),
		now:    time.Now,
		users:  make(map[string]*userData),
		faults: make(map[string]int),
	}
}

// SetAnalysis sets what analyze returns for user.
func (s *Server) SetAnalysis(user string, p focus.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLocked(user).analysis = p
}

// SetToday marks p as the standup already generated today for user.
func (s *Server) SetToday(user string, p focus.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userLocked(user)
	u.analysis = p
	u.analyzed = true
}

// SetProjects replaces user's projects.
func (s *Server) SetProjects(user string, projects []calendar.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLocked(user).projects = projects
}

// SetEvents replaces user's calendar events.
func (s *Server) SetEvents(user string, events []calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userLocked(user).events = events
}

// Projects returns user's stored projects.
func (s *Server) Projects(user string) []calendar.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]calendar.Project, 0, len(s.userLocked(user).projects))
	for _, p := range s.userLocked(user).projects {
		out = append(out, p.Clone())
	}
	return out
}

// StatusSaves returns how many status saves user made.
func (s *Server) StatusSaves(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked(user).statusSeen
}

// StatusBody returns the last status save body for user and task title.
func (s *Server) StatusBody(user, title string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.userLocked(user).statuses[title]
	if !ok {
		return nil, false
	}
	return rec.Body, true
}

// Fail makes every request for method and path answer with code until
// cleared with a code of 0.
func (s *Server) Fail(method, path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if code == 0 {
		delete(s.faults, key)
		return
	}
	s.faults[key] = code
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authorize)
		r.Use(s.injectFaults)

		r.Route("/standup", func(r chi.Router) {
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/today", s.handleToday)
			r.Get("/status", s.handleGetStatus)
			r.Post("/status", s.handleSaveStatus)
		})

		r.Get("/projects", s.handleListProjects)
		r.Put("/projects/{id}", s.handleUpdateProject)
		r.Get("/calendar/events", s.handleListEvents)
	})

	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.opts.Token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		code, ok := s.faults[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeError(w, code, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) userLocked(email string) *userData {
	u, ok := s.users[email]
	if ok {
		return u
	}

	u = &userData{statuses: make(map[string]*statusRecord)}
	if s.opts.Seed {
		f := DemoFixture(s.now())
		u.analysis = f.Analysis
		u.projects = f.Projects
		u.events = f.Events
	}
	s.users[email] = u
	return u
}

// todayResponse is the cached-standup shape: snake_case keys, confidences
// instead of urgencies.
type todayResponse struct {
	HasStandup          bool                   `json:"has_standup"`
	TheOneThing         *focus.OneThing        `json:"the_one_thing,omitempty"`
	SecondaryPriorities []focus.Priority       `json:"secondary_priorities,omitempty"`
	AutonomousTasks     []focus.AutonomousTask `json:"autonomous_tasks,omitempty"`
	DailyPlan           []focus.PlanBlock      `json:"daily_plan,omitempty"`
	Reasoning           string                 `json:"reasoning,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string `json:"user_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserEmail == "" {
		writeError(w, http.StatusBadRequest, "user_email is required")
		return
	}

	s.mu.Lock()
	u := s.userLocked(req.UserEmail)
	u.analyzed = true
	p := u.analysis
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	u := s.userLocked(user)
	analyzed, p := u.analyzed, u.analysis
	s.mu.Unlock()

	if !analyzed {
		writeJSON(w, http.StatusOK, todayResponse{HasStandup: false})
		return
	}

	priorities := make([]focus.Priority, len(p.SecondaryPriorities))
	for i, sp := range p.SecondaryPriorities {
		c := focus.NormalizeConfidence(sp)
		sp.Urgency, sp.Confidence = nil, &c
		priorities[i] = sp
	}

	writeJSON(w, http.StatusOK, todayResponse{
		HasStandup:          true,
		TheOneThing:         &p.TheOneThing,
		SecondaryPriorities: priorities,
		AutonomousTasks:     p.AutonomousTasks,
		DailyPlan:           p.DailyPlan,
		Reasoning:           p.Reasoning,
	})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	title := r.URL.Query().Get("task_title")

	s.mu.Lock()
	rec, found := s.userLocked(user).statuses[title]
	var id int
	var status focus.BackendStatus
	if found {
		id, status = rec.ID, rec.Status
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"has_status": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"has_status": true, "id": id, "status": status})
}

func (s *Server) handleSaveStatus(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var req struct {
		UserEmail string              `json:"user_email"`
		TaskTitle string              `json:"task_title"`
		Status    focus.BackendStatus `json:"status"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.UserEmail == "" || req.TaskTitle == "" {
		writeError(w, http.StatusBadRequest, "user_email and task_title are required")
		return
	}

	s.mu.Lock()
	u := s.userLocked(req.UserEmail)
	u.statusSeen++
	rec, ok := u.statuses[req.TaskTitle]
	if !ok {
		s.nextID++
		rec = &statusRecord{ID: s.nextID}
		u.statuses[req.TaskTitle] = rec
	}
	rec.Status = req.Status
	rec.Body = raw
	id := rec.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	projects := s.Projects(user)
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var p calendar.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project")
		return
	}
	if p.ID.String() != "" && p.ID.String() != id {
		writeError(w, http.StatusBadRequest, "project id does not match path")
		return
	}

	s.mu.Lock()
	u := s.userLocked(user)
	idx := -1
	for i, existing := range u.projects {
		if existing.ID.String() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	u.projects[idx] = p.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"project": p})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	s.mu.Lock()
	events := s.userLocked(user).events
	now := s.now()
	s.mu.Unlock()

	horizon := now.AddDate(0, 0, days)
	out := make([]calendar.Event, 0, len(events))
	for _, ev := range events {
		start, err := ev.Start.Time()
		if err != nil || start.After(horizon) {
			continue
		}
		out = append(out, ev)
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := r.URL.Query().Get("user_email")
	if user == "" {
		writeError(w, http.StatusBadRequest, "user_email is required")
		return "", false
	}
	return user, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
