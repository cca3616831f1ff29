// Package backend is the HTTP client for the assistant backend. It covers
// the standup, status, project and calendar routes the dashboard uses.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/pkg/iojson"
)

// ErrNotFound matches a StatusError for a 404 response.
var ErrNotFound = errors.New("not found")

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports 404s as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string // optional bearer token
	UserEmail string
	// Timeout bounds each request. Zero leaves requests bounded only by
	// their context.
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the backend on behalf of one user.
type Client struct {
	base      *url.URL
	token     string
	user      string
	userAgent string
	http      *http.Client
	log       zerolog.Logger
}

var (
	_ focus.Source          = (*Client)(nil)
	_ focus.StatusStore     = (*Client)(nil)
	_ calendar.ProjectStore = (*Client)(nil)
	_ calendar.EventSource  = (*Client)(nil)
)

// New creates a Client.
func New(opts Options, log zerolog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("backend url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "standup"
	}

	return &Client{
		base:      base,
		token:     opts.Token,
		user:      opts.UserEmail,
		userAgent: ua,
		http:      hc,
		log:       log.With().Str("component", "backend").Logger(),
	}, nil
}

// User returns the email the client acts for.
func (c *Client) User() string {
	return c.user
}

// Today returns the standup already generated for today, if any.
func (c *Client) Today(ctx context.Context) (focus.Payload, bool, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/standup/today", c.userQuery(), nil, &raw); err != nil {
		return focus.Payload{}, false, err
	}

	var head struct {
		HasStandup bool `json:"has_standup"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return focus.Payload{}, false, fmt.Errorf("decode today: %w", err)
	}
	if !head.HasStandup {
		return focus.Payload{}, false, nil
	}

	var p focus.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return focus.Payload{}, false, fmt.Errorf("decode today: %w", err)
	}
	return p, true, nil
}

// Analyze asks the backend for a fresh analysis.
func (c *Client) Analyze(ctx context.Context) (focus.Payload, error) {
	body := map[string]string{"user_email": c.user}

	var p focus.Payload
	if err := c.do(ctx, http.MethodPost, "/api/standup/analyze", nil, body, &p); err != nil {
		return focus.Payload{}, err
	}
	return p, nil
}

// LookupStatus returns today's status record for a task title.
func (c *Client) LookupStatus(ctx context.Context, taskTitle string) (focus.StatusRecord, bool, error) {
	q := c.userQuery()
	q.Set("task_title", taskTitle)

	var resp struct {
		HasStatus bool                `json:"has_status"`
		ID        iojson.FlexString   `json:"id"`
		Status    focus.BackendStatus `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/standup/status", q, nil, &resp); err != nil {
		return focus.StatusRecord{}, false, err
	}
	if !resp.HasStatus {
		return focus.StatusRecord{}, false, nil
	}

	return focus.StatusRecord{ID: resp.ID.String(), Status: resp.Status}, true, nil
}

// SaveStatus creates or updates a status record and returns its id.
func (c *Client) SaveStatus(ctx context.Context, snap focus.StatusSnapshot) (string, error) {
	body := struct {
		UserEmail string `json:"user_email"`
		focus.StatusSnapshot
	}{c.user, snap}

	var resp struct {
		ID iojson.FlexString `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/standup/status", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.ID.String(), nil
}

// ListProjects returns the user's projects.
func (c *Client) ListProjects(ctx context.Context) ([]calendar.Project, error) {
	var resp struct {
		Projects []calendar.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/projects", c.userQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// UpdateProject replaces a project and returns the stored copy.
func (c *Client) UpdateProject(ctx context.Context, p calendar.Project) (calendar.Project, error) {
	if p.ID == "" {
		return calendar.Project{}, fmt.Errorf("update project: missing id")
	}

	var resp struct {
		Project *calendar.Project `json:"project"`
	}
	path := "/api/projects/" + url.PathEscape(p.ID.String())
	if err := c.do(ctx, http.MethodPut, path, c.userQuery(), p, &resp); err != nil {
		return calendar.Project{}, err
	}
	if resp.Project == nil {
		return calendar.Project{}, fmt.Errorf("update project %s: response has no project", p.ID)
	}
	return *resp.Project, nil
}

// ListEvents returns calendar events for the next days days.
func (c *Client) ListEvents(ctx context.Context, days int) ([]calendar.Event, error) {
	q := c.userQuery()
	q.Set("days", strconv.Itoa(days))

	var resp struct {
		Events []calendar.Event `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/calendar/events", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) userQuery() url.Values {
	return url.Values{"user_email": []string{c.user}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Str("path", path).Msg("close response body")
		}
	}()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
