package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/standup/internal/core/config"
)

type fakeCache struct {
	keys     []string
	listErr  error
	expired  int64
	sweeps   int
	sweepErr error
}

func (f *fakeCache) ListKeys(context.Context) ([]string, error) {
	return f.keys, f.listErr
}

func (f *fakeCache) SweepExpired(context.Context) (int64, error) {
	f.sweeps++
	return f.expired, f.sweepErr
}

func item(t *testing.T, r Result, label string) CheckItem {
	t.Helper()
	for _, it := range r.Items {
		if it.Label == label {
			return it
		}
	}
	t.Fatalf("no item %q in %s", label, r.Name)
	return CheckItem{}
}

func TestSummaryAndFixable(t *testing.T) {
	results := []Result{
		{Name: "a", Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn, Fixable: true}}},
		{Name: "b", Items: []CheckItem{{Status: StatusFail}, {Status: StatusPass, Fixable: true}}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, CountFixable(results))
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.UserEmail = "ada@example.com"

	r := NewConfigCheck(&cfg, "").Run(context.Background(), false)
	assert.Equal(t, StatusPass, item(t, r, "config").Status)

	cfg.UserEmail = ""
	cfg.Backend.URL = "ftp://nope"
	r = NewConfigCheck(&cfg, "").Run(context.Background(), false)

	_, warned, failed := Summary([]Result{r})
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, warned)
}

func TestCacheCheck_Healthy(t *testing.T) {
	dir := t.TempDir()
	store := &fakeCache{keys: []string{"standup:ada"}}

	r := NewCacheCheck(dir, "standup.db", store).Run(context.Background(), false)

	assert.Equal(t, StatusPass, item(t, r, "data dir").Status)
	assert.Equal(t, "1 cached entries", item(t, r, "database").Detail)
	assert.Zero(t, store.sweeps)
}

func TestCacheCheck_MissingDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	r := NewCacheCheck(dir, "standup.db", &fakeCache{}).Run(context.Background(), false)
	require.Len(t, r.Items, 1)
	assert.Equal(t, StatusFail, r.Items[0].Status)
}

func TestCacheCheck_DatabaseError(t *testing.T) {
	r := NewCacheCheck(t.TempDir(), "standup.db", &fakeCache{listErr: errors.New("locked")}).Run(context.Background(), false)
	assert.Equal(t, StatusFail, item(t, r, "database").Status)
}

func TestCacheCheck_CorruptBackups(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "standup.db.corrupt.20260101-120000")
	require.NoError(t, os.WriteFile(backup, []byte("x"), 0o644))
	store := &fakeCache{expired: 3}

	r := NewCacheCheck(dir, "standup.db", store).Run(context.Background(), false)
	it := item(t, r, "corrupt backups")
	assert.Equal(t, StatusWarn, it.Status)
	assert.True(t, it.Fixable)
	assert.FileExists(t, backup)

	r = NewCacheCheck(dir, "standup.db", store).Run(context.Background(), true)
	assert.Equal(t, StatusPass, item(t, r, "corrupt backups").Status)
	assert.Equal(t, "removed 3", item(t, r, "expired entries").Detail)
	assert.Equal(t, 1, store.sweeps)
	assert.NoFileExists(t, backup)
}

func TestBackendCheck(t *testing.T) {
	var sawDeadline bool
	check := NewBackendCheck("http://localhost:8000", time.Second,
		Probe{Label: "projects", Run: func(ctx context.Context) (string, error) {
			_, sawDeadline = ctx.Deadline()
			return "3 projects", nil
		}},
		Probe{Label: "events", Run: func(context.Context) (string, error) {
			return "", errors.New("GET /api/calendar/events: 502 Bad Gateway")
		}},
	)

	r := check.Run(context.Background(), false)

	assert.True(t, sawDeadline)
	assert.Equal(t, "http://localhost:8000", item(t, r, "url").Detail)
	assert.Equal(t, StatusPass, item(t, r, "projects").Status)
	assert.Contains(t, item(t, r, "projects").Detail, "3 projects, ")
	assert.Equal(t, StatusFail, item(t, r, "events").Status)
}

func TestRunAll_KeepsOrder(t *testing.T) {
	checks := []Check{
		NewBackendCheck("u", 0),
		NewCacheCheck(t.TempDir(), "standup.db", &fakeCache{}),
	}

	results := RunAll(context.Background(), checks, false)
	require.Len(t, results, 2)
	assert.Equal(t, "Backend", results[0].Name)
	assert.Equal(t, "Local Cache", results[1].Name)
}
