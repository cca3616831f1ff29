package calendar

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProjects(t *testing.T, raw string) []Project {
	t.Helper()
	var ps []Project
	require.NoError(t, json.Unmarshal([]byte(raw), &ps))
	return ps
}

func mustEvents(t *testing.T, raw string) []Event {
	t.Helper()
	var evs []Event
	require.NoError(t, json.Unmarshal([]byte(raw), &evs))
	return evs
}

func fixtureProjects(t *testing.T) []Project {
	return mustProjects(t, `[
		{"id": "p1", "name": "Launch", "goals": [
			{"goal": "Ship v2", "deadline": "2025-01-05", "status": "in_progress"},
			{"goal": "Write docs"},
			{"goal": "Retro", "deadline": "2025-01-02"}
		]},
		{"id": 7, "name": "Hiring", "goals": [
			{"goal": "Close req", "deadline": "2025-01-05", "status": "blocked"}
		]}
	]`)
}

func fixtureEvents(t *testing.T) []Event {
	return mustEvents(t, `[
		{"id": "evt1", "summary": "Standup", "start": "2025-01-05T09:00:00"},
		{"summary": "Offsite", "start": {"date": "2025-01-03"}, "location": "HQ"},
		{"id": "evt2", "summary": "Planning", "start": {"dateTime": "2025-01-02T15:00:00"}}
	]`)
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestAggregate_GoalBeforeEventOnSameDay(t *testing.T) {
	projects := mustProjects(t, `[{"id": "p1", "name": "Launch", "goals": [
		{"goal": "Ship v2", "deadline": "2025-01-05", "status": "in_progress"}
	]}]`)
	events := mustEvents(t, `[{"id": "e1", "summary": "Standup", "start": "2025-01-05T09:00:00"}]`)

	entries := Aggregate(projects, events, "")

	require.Len(t, entries, 2)
	assert.Equal(t, "goal-p1-Ship v2", entries[0].ID)
	assert.Equal(t, TypeProjectGoal, entries[0].Type)
	assert.Equal(t, GoalInProgress, entries[0].Status)
	assert.Equal(t, "calendar-e1", entries[1].ID)

	for _, e := range entries {
		y, m, d := e.Date.Date()
		assert.Equal(t, 2025, y)
		assert.Equal(t, time.January, m)
		assert.Equal(t, 5, d)
	}
}

func TestAggregate_OrderAndSkips(t *testing.T) {
	entries := Aggregate(fixtureProjects(t), fixtureEvents(t), "")

	assert.Equal(t, []string{
		"goal-p1-Retro",
		"calendar-evt2",
		"calendar-" + uuid.NewSHA1(eventNamespace, []byte("Offsite|2025-01-03|1")).String(),
		"goal-p1-Ship v2",
		"goal-7-Close req",
		"calendar-evt1",
	}, ids(entries))
}

func TestAggregate_Deterministic(t *testing.T) {
	projects, events := fixtureProjects(t), fixtureEvents(t)

	first := Aggregate(projects, events, "")
	second := Aggregate(projects, events, "")

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, first, second)
}

func TestAggregate_TiesKeepGoalsFirst(t *testing.T) {
	entries := Aggregate(fixtureProjects(t), fixtureEvents(t), "")

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		assert.False(t, cur.Date.Before(prev.Date), "entries out of order at %d", i)
		if SameDay(prev.Date, cur.Date) && prev.Type == TypeCalendarEvent {
			assert.Equal(t, TypeCalendarEvent, cur.Type, "goal after event on %s", cur.Date)
		}
	}
}

func TestAggregate_EventWithoutIDIsStable(t *testing.T) {
	evs := mustEvents(t, `[{"summary": "Offsite", "start": "2025-01-03"}]`)

	a := Aggregate(nil, evs, "")
	b := Aggregate(nil, evs, "")

	require.Len(t, a, 1)
	assert.True(t, strings.HasPrefix(a[0].ID, "calendar-"))
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.True(t, a[0].AllDay)
}

func TestAggregate_DuplicateGoalTitles(t *testing.T) {
	projects := mustProjects(t, `[{"id": "p1", "goals": [
		{"goal": "Review", "deadline": "2025-02-01"},
		{"goal": "Review", "deadline": "2025-02-03"}
	]}]`)

	entries := Aggregate(projects, nil, "")

	assert.Equal(t, []string{"goal-p1-Review", "goal-p1-Review#1"}, ids(entries))
	assert.Equal(t, 0, entries[0].GoalIndex)
	assert.Equal(t, 1, entries[1].GoalIndex)
}

func TestAggregate_GoalIDsAreUnique(t *testing.T) {
	tests := []struct {
		name     string
		projects string
	}{
		{
			name: "suffix lookalike title",
			projects: `[{"id": "p", "goals": [
				{"goal": "X", "deadline": "2025-02-01"},
				{"goal": "X", "deadline": "2025-02-01"},
				{"goal": "X-2", "deadline": "2025-02-01"},
				{"goal": "X#1", "deadline": "2025-02-01"}
			]}]`,
		},
		{
			name: "hyphens across projects",
			projects: `[
				{"id": "a-b", "goals": [{"goal": "c", "deadline": "2025-02-01"}]},
				{"id": "a", "goals": [{"goal": "b-c", "deadline": "2025-02-01"}]}
			]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Aggregate(mustProjects(t, tt.projects), nil, "")

			seen := make(map[string]bool)
			for _, e := range entries {
				assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
				seen[e.ID] = true
			}
		})
	}
}

func TestEntry_JSONKeepsFirstGoalIndex(t *testing.T) {
	projects := mustProjects(t, `[{"id": "p1", "goals": [{"goal": "Ship", "deadline": "2025-02-01"}]}]`)
	entries := Aggregate(projects, nil, "")
	require.Len(t, entries, 1)

	out, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"goal_index":0`)
}

func TestAggregate_DefaultsGoalStatus(t *testing.T) {
	projects := mustProjects(t, `[{"id": "p1", "goals": [{"goal": "x", "deadline": "2025-02-01"}]}]`)

	entries := Aggregate(projects, nil, "")

	require.Len(t, entries, 1)
	assert.Equal(t, GoalNotStarted, entries[0].Status)
}

func TestAggregate_Filter(t *testing.T) {
	tests := []struct {
		filter string
		goals  int
	}{
		{filter: "", goals: 3},
		{filter: "p1", goals: 2},
		{filter: "hiring", goals: 1},
		{filter: "Lau*", goals: 2},
		{filter: "nope", goals: 0},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			entries := Aggregate(fixtureProjects(t), fixtureEvents(t), tt.filter)

			goals := 0
			for _, e := range entries {
				if e.IsGoal() {
					goals++
				}
			}
			assert.Equal(t, tt.goals, goals)
			assert.Len(t, entries, tt.goals+3)
		})
	}
}

func TestMatchProject(t *testing.T) {
	p := Project{ID: "team/alpha", Name: "Alpha Launch"}

	assert.True(t, MatchProject(p, ""))
	assert.True(t, MatchProject(p, "TEAM/ALPHA"))
	assert.True(t, MatchProject(p, "team/*"))
	assert.True(t, MatchProject(p, "alpha*"))
	assert.False(t, MatchProject(p, "beta*"))
	assert.False(t, MatchProject(p, "[bad"))
}

func TestEntriesForDay(t *testing.T) {
	entries := Aggregate(fixtureProjects(t), fixtureEvents(t), "")
	day := time.Date(2025, 1, 5, 18, 30, 0, 0, time.Local)

	got := EntriesForDay(entries, day)

	assert.Equal(t, []string{"goal-p1-Ship v2", "goal-7-Close req", "calendar-evt1"}, ids(got))
}

func TestTruncate(t *testing.T) {
	entries := Aggregate(fixtureProjects(t), fixtureEvents(t), "")

	shown, more := Truncate(entries, 2)
	assert.Len(t, shown, 2)
	assert.Equal(t, len(entries)-2, more)

	shown, more = Truncate(entries[:1], 2)
	assert.Len(t, shown, 1)
	assert.Equal(t, 0, more)
}
