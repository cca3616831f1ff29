package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/backend/mockserver"
	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/config"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/data/db"
	"github.com/colonyops/standup/internal/printer"
	"github.com/colonyops/standup/internal/standup"
)

const testUser = "ada@example.com"

func newTestApp(t *testing.T) (*standup.App, *mockserver.Server) {
	t.Helper()

	srv := mockserver.New(mockserver.Options{Seed: true}, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.UserEmail = testUser
	cfg.Backend.URL = ts.URL

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	app, err := standup.NewApp(&cfg, database, standup.BuildInfo{Version: "test"}, zerolog.Nop())
	require.NoError(t, err)
	return app, srv
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, app *standup.App, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	flags := &Flags{}

	root := &cli.Command{
		Name:           "standup",
		Writer:         &stdout,
		ErrWriter:      &stderr,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	root = NewFocusCmd(flags, app).Register(root)
	root = NewStatusCmd(flags, app).Register(root)
	root = NewCalendarCmd(flags, app).Register(root)
	root = NewGoalCmd(flags, app).Register(root)
	root = NewNotificationsCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)

	ctx := printer.NewContext(context.Background(), printer.New(&stderr))
	err := root.Run(ctx, append([]string{"standup"}, args...))

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestFocusCmd_JSON(t *testing.T) {
	app, _ := newTestApp(t)

	res := runCLI(t, app, "focus", "--json")
	require.NoError(t, res.err)

	var state focus.State
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &state))
	assert.Equal(t, "Finish the Q3 board deck", state.ActiveTask.Title)
	assert.Equal(t, 91, state.ActiveTask.Urgency)
	assert.Len(t, state.Alternatives, 3)
}

func TestFocusCmd_Markdown(t *testing.T) {
	app, _ := newTestApp(t)

	res := runCLI(t, app, "focus")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Finish")
	assert.Contains(t, res.stdout, "Alternatives")
	assert.Contains(t, res.stdout, "Reasoning")
}

func TestFocusCmd_RequiresUser(t *testing.T) {
	app, _ := newTestApp(t)
	app.Config.UserEmail = ""

	res := runCLI(t, app, "focus")
	require.Error(t, res.err)
}

func TestStatusCmd_Saves(t *testing.T) {
	app, srv := newTestApp(t)

	res := runCLI(t, app, "status", "in-progress")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Finish the Q3 board deck: In progress")
	assert.Equal(t, 1, srv.StatusSaves(testUser))
	assert.Equal(t, focus.StatusInProgress, app.Focus.State().Status)
}

func TestStatusCmd_RejectsUnknownStatus(t *testing.T) {
	app, srv := newTestApp(t)

	res := runCLI(t, app, "status", "done-ish")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown status")
	assert.Equal(t, 0, srv.StatusSaves(testUser))
}

func TestCalendarCmd_JSON(t *testing.T) {
	app, _ := newTestApp(t)

	res := runCLI(t, app, "calendar", "--json", "--project", "board")
	require.NoError(t, res.err)

	var out calendarOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Len(t, out.Month, len("2006-01"))

	for _, d := range out.Days {
		for _, e := range d.Entries {
			if e.IsGoal() {
				assert.Equal(t, "board", e.ProjectID)
			}
		}
	}
}

func TestCalendarCmd_PartialLoadWarns(t *testing.T) {
	app, srv := newTestApp(t)
	srv.Fail("GET", "/api/projects", 500)

	res := runCLI(t, app, "calendar")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "calendar is incomplete")
}

func TestCalendarCmd_JSONFailure(t *testing.T) {
	app, srv := newTestApp(t)
	srv.Fail("GET", "/api/projects", 500)
	srv.Fail("GET", "/api/calendar/events", 500)

	res := runCLI(t, app, "calendar", "--json")

	var ec cli.ExitCoder
	require.ErrorAs(t, res.err, &ec)
	assert.Equal(t, 1, ec.ExitCode())
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, `"message":"list projects`)
}

func TestCalendarCmd_BadMonth(t *testing.T) {
	app, _ := newTestApp(t)

	res := runCLI(t, app, "calendar", "--month", "March")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "YYYY-MM")
}

func TestGoalCmd_SetsStatus(t *testing.T) {
	app, srv := newTestApp(t)

	res := runCLI(t, app, "goal", "--project", "Hiring", "--goal", "approve hiring plan", "--status", "completed")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Approve hiring plan")

	for _, p := range srv.Projects(testUser) {
		if p.ID.String() == "hiring" {
			assert.Equal(t, calendar.GoalCompleted, p.Goals[0].Status)
		}
	}
}

func TestGoalCmd_UnknownGoal(t *testing.T) {
	app, _ := newTestApp(t)

	res := runCLI(t, app, "goal", "--project", "board", "--goal", "Nope")
	require.ErrorIs(t, res.err, calendar.ErrGoalNotFound)
}

func TestNotificationsCmd_ListsAndClears(t *testing.T) {
	app, srv := newTestApp(t)
	srv.Fail("GET", "/api/calendar/events", 500)

	// Projects still load, so the command succeeds with a warning.
	_ = runCLI(t, app, "calendar")

	res := runCLI(t, app, "notifications", "--json")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.NotEmpty(t, lines)

	var first notificationInfo
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "calendar", first.Source)
	assert.Equal(t, "error", first.Level)

	res = runCLI(t, app, "notifications", "--clear")
	require.NoError(t, res.err)

	res = runCLI(t, app, "notifications")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "No notifications")
}

func TestPreviewCmd_ReadsStdin(t *testing.T) {
	var stdout bytes.Buffer
	root := &cli.Command{
		Name:           "standup",
		Reader:         strings.NewReader(`{"the_one_thing":{"title":"Ship it","urgency":40},"secondary_priorities":[{"title":"Later","confidence":0.25}]}`),
		Writer:         &stdout,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	root = NewPreviewCmd(&Flags{}).Register(root)

	require.NoError(t, root.Run(context.Background(), []string{"standup", "preview", "--json"}))

	var state focus.State
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &state))
	assert.Equal(t, "Ship it", state.ActiveTask.Title)
	require.Len(t, state.Alternatives, 1)
	assert.InDelta(t, 0.25, state.Alternatives[0].Confidence, 0.001)
}

func TestDoctorCmd_JSON(t *testing.T) {
	app, _ := newTestApp(t)

	res := runCLI(t, app, "doctor", "--format", "json")
	require.NoError(t, res.err)

	var out struct {
		Healthy bool `json:"healthy"`
		Checks  []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.True(t, out.Healthy)
	require.Len(t, out.Checks, 3)
	assert.Equal(t, "Backend", out.Checks[2].Name)
}

func TestDoctorCmd_BackendDown(t *testing.T) {
	app, srv := newTestApp(t)
	srv.Fail("GET", "/api/projects", 503)

	res := runCLI(t, app, "doctor")

	var ec cli.ExitCoder
	require.ErrorAs(t, res.err, &ec)
	assert.Contains(t, res.stdout, "projects")
	assert.Contains(t, res.stdout, "1 failed")
}

func TestStatusCmd_Completion(t *testing.T) {
	var out bytes.Buffer
	root := &cli.Command{
		Name:                  "standup",
		Writer:                &out,
		ErrWriter:             &bytes.Buffer{},
		EnableShellCompletion: true,
		ExitErrHandler:        func(context.Context, *cli.Command, error) {},
	}
	root = NewStatusCmd(&Flags{}, nil).Register(root)

	require.NoError(t, root.Run(context.Background(), []string{"standup", "status", "--generate-shell-completion"}))
	assert.Equal(t, "preparing\nin_progress\ncomplete\nblocked\n", out.String())
}
