package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	projects  []Project
	events    []Event
	listErr   error
	eventsErr error
	updateErr error

	// onUpdate lets a test change what the server returns.
	onUpdate func(p Project) Project
	updated  []Project
	sawEntry func()
}

func (f *fakeBackend) ListProjects(context.Context) ([]Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Project, len(f.projects))
	for i, p := range f.projects {
		out[i] = p.Clone()
	}
	return out, nil
}

func (f *fakeBackend) ListEvents(context.Context, int) ([]Event, error) {
	return f.events, f.eventsErr
}

func (f *fakeBackend) UpdateProject(_ context.Context, p Project) (Project, error) {
	if f.sawEntry != nil {
		f.sawEntry()
	}
	f.updated = append(f.updated, p.Clone())
	if f.updateErr != nil {
		return Project{}, f.updateErr
	}
	if f.onUpdate != nil {
		return f.onUpdate(p), nil
	}
	return p, nil
}

type recorder struct {
	messages []string
}

func (r *recorder) Errorf(source, format string, args ...any) {
	r.messages = append(r.messages, source+": "+fmt.Sprintf(format, args...))
}

func newTestAggregator(t *testing.T, b *fakeBackend) (*Aggregator, *recorder) {
	t.Helper()
	r := &recorder{}
	a := NewAggregator(b, b, 60, r, zerolog.Nop())
	require.NoError(t, a.Reload(context.Background()))
	return a, r
}

func entryByID(t *testing.T, entries []Entry, id string) Entry {
	t.Helper()
	for _, e := range entries {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entry %s not found", id)
	return Entry{}
}

func TestAggregator_ReloadAndFilter(t *testing.T) {
	b := &fakeBackend{projects: fixtureProjects(t), events: fixtureEvents(t)}
	a, _ := newTestAggregator(t, b)

	assert.Len(t, a.Entries(), 6)

	a.SetFilter("hiring")
	assert.Equal(t, "hiring", a.Filter())
	assert.Len(t, a.Entries(), 4)

	a.SetFilter("")
	a.SetEvents(nil)
	assert.Len(t, a.Entries(), 3)
}

func TestAggregator_ReloadPartialFailure(t *testing.T) {
	boom := errors.New("calendar proxy down")
	b := &fakeBackend{projects: fixtureProjects(t), eventsErr: boom}
	r := &recorder{}
	a := NewAggregator(b, b, 60, r, zerolog.Nop())

	err := a.Reload(context.Background())
	require.ErrorIs(t, err, boom)

	assert.Len(t, a.Entries(), 3)
	require.Len(t, r.messages, 1)
	assert.Contains(t, r.messages[0], "calendar proxy down")
}

func TestAggregator_UpdateGoalStatusTargetsLookalikeGoal(t *testing.T) {
	projects := mustProjects(t, `[{"id": "p", "goals": [
		{"goal": "X", "deadline": "2025-02-01"},
		{"goal": "X", "deadline": "2025-02-01"},
		{"goal": "X-2", "deadline": "2025-02-01"}
	]}]`)
	b := &fakeBackend{projects: projects, updateErr: errors.New("down")}
	a, _ := newTestAggregator(t, b)

	entries := a.Entries()
	require.Len(t, entries, 3)
	target := entries[2]
	require.Equal(t, "X-2", target.Title)

	// Optimistic state: only the X-2 entry shows the new status.
	b.sawEntry = func() {
		got := a.Entries()
		assert.Equal(t, GoalNotStarted, got[1].Status)
		assert.Equal(t, GoalBlocked, got[2].Status)
	}

	err := a.UpdateGoalStatus(context.Background(), target, GoalBlocked)
	require.Error(t, err)

	require.Len(t, b.updated, 1)
	assert.Equal(t, GoalBlocked, b.updated[0].Goals[2].Status)
	assert.Equal(t, GoalNotStarted, b.updated[0].Goals[1].Status.OrDefault())

	for _, e := range a.Entries() {
		assert.Equal(t, GoalNotStarted, e.Status, e.ID)
	}
}

func TestAggregator_UpdateGoalStatusReconciles(t *testing.T) {
	b := &fakeBackend{projects: fixtureProjects(t), events: fixtureEvents(t)}
	a, _ := newTestAggregator(t, b)
	entry := entryByID(t, a.Entries(), "goal-p1-Ship v2")

	// The server copy carries a goal this client has not seen yet.
	b.onUpdate = func(p Project) Project {
		p.Goals = append(p.Goals, Goal{Goal: "Added elsewhere", Deadline: "2025-01-09"})
		return p
	}

	require.NoError(t, a.UpdateGoalStatus(context.Background(), entry, GoalCompleted))

	require.Len(t, b.updated, 1)
	sent := b.updated[0]
	require.Len(t, sent.Goals, 3)
	assert.Equal(t, GoalCompleted, sent.Goals[0].Status)
	assert.Equal(t, "Write docs", sent.Goals[1].Goal)

	entries := a.Entries()
	assert.Equal(t, GoalCompleted, entryByID(t, entries, "goal-p1-Ship v2").Status)
	entryByID(t, entries, "goal-p1-Added elsewhere")

	var p1 Project
	for _, p := range a.Projects() {
		if p.ID == "p1" {
			p1 = p
		}
	}
	assert.Len(t, p1.Goals, 4)
}

func TestAggregator_UpdateGoalStatusIsOptimistic(t *testing.T) {
	b := &fakeBackend{projects: fixtureProjects(t)}
	a, _ := newTestAggregator(t, b)
	entry := entryByID(t, a.Entries(), "goal-7-Close req")

	b.sawEntry = func() {
		assert.Equal(t, GoalInProgress, entryByID(t, a.Entries(), entry.ID).Status)
	}

	require.NoError(t, a.UpdateGoalStatus(context.Background(), entry, GoalInProgress))
}

func TestAggregator_UpdateGoalStatusRollsBack(t *testing.T) {
	boom := errors.New("409 conflict")
	b := &fakeBackend{projects: fixtureProjects(t), updateErr: boom}
	a, r := newTestAggregator(t, b)
	entry := entryByID(t, a.Entries(), "goal-p1-Ship v2")

	err := a.UpdateGoalStatus(context.Background(), entry, GoalBlocked)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, GoalInProgress, entryByID(t, a.Entries(), entry.ID).Status)
	require.Len(t, r.messages, 1)
	assert.Contains(t, r.messages[0], "409 conflict")
	assert.Equal(t, GoalStatus("in_progress"), a.Projects()[0].Goals[0].Status)
}

func TestAggregator_UpdateGoalStatusRejectsEvents(t *testing.T) {
	b := &fakeBackend{events: fixtureEvents(t)}
	a, _ := newTestAggregator(t, b)

	err := a.UpdateGoalStatus(context.Background(), entryByID(t, a.Entries(), "calendar-evt1"), GoalCompleted)
	require.ErrorIs(t, err, ErrNotProjectGoal)
	assert.Empty(t, b.updated)
}

func TestAggregator_UpdateGoalStatusInvalid(t *testing.T) {
	b := &fakeBackend{projects: fixtureProjects(t)}
	a, _ := newTestAggregator(t, b)

	err := a.UpdateGoalStatus(context.Background(), a.Entries()[0], GoalStatus("done"))
	require.ErrorIs(t, err, ErrInvalidGoalStatus)
}

func TestAggregator_UpdateGoalStatusFallsBackToTitle(t *testing.T) {
	b := &fakeBackend{projects: fixtureProjects(t)}
	a, _ := newTestAggregator(t, b)
	entry := entryByID(t, a.Entries(), "goal-p1-Retro")

	// A goal was inserted ahead of Retro since the entry was built.
	entry.GoalIndex = 0

	require.NoError(t, a.UpdateGoalStatus(context.Background(), entry, GoalCompleted))
	require.Len(t, b.updated, 1)
	assert.Equal(t, GoalCompleted, b.updated[0].Goals[2].Status)
	assert.Equal(t, GoalInProgress, b.updated[0].Goals[0].Status)
}

func TestAggregator_UpdateGoalStatusGoalGone(t *testing.T) {
	b := &fakeBackend{projects: fixtureProjects(t)}
	a, _ := newTestAggregator(t, b)
	entry := entryByID(t, a.Entries(), "goal-p1-Retro")
	entry.Title = "Renamed"

	err := a.UpdateGoalStatus(context.Background(), entry, GoalCompleted)
	require.ErrorIs(t, err, ErrGoalNotFound)
	assert.Empty(t, b.updated)
}
