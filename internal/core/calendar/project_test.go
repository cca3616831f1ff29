package calendar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_PreservesUnknownFields(t *testing.T) {
	raw := `{
		"id": 12,
		"name": "Launch",
		"description": "Q1 launch",
		"color": "#ff0000",
		"goals": [{"goal": "Ship", "deadline": "2025-01-05", "status": "in_progress", "owner": "ada"}]
	}`

	var p Project
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "12", p.ID.String())

	p.Goals[0].Status = GoalCompleted
	out, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	assert.InDelta(t, 12, got["id"], 0)
	assert.Equal(t, "Q1 launch", got["description"])
	assert.Equal(t, "#ff0000", got["color"])

	goals := got["goals"].([]any)
	require.Len(t, goals, 1)
	goal := goals[0].(map[string]any)
	assert.Equal(t, "completed", goal["status"])
	assert.Equal(t, "ada", goal["owner"])
	assert.Equal(t, "2025-01-05", goal["deadline"])
}

func TestProject_MarshalWithoutRaw(t *testing.T) {
	p := Project{ID: "p1", Name: "Launch"}

	out, err := json.Marshal(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id": "p1", "name": "Launch", "goals": []}`, string(out))
}

func TestProject_CloneIsDeep(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id": "p1", "goals": [{"goal": "a"}]}`), &p))

	c := p.Clone()
	c.Goals[0].Status = GoalBlocked

	assert.Equal(t, GoalStatus(""), p.Goals[0].Status)
}

func TestGoalStatus(t *testing.T) {
	assert.Equal(t, GoalNotStarted, GoalStatus("").OrDefault())
	assert.Equal(t, GoalNotStarted, GoalStatus("archived").OrDefault())
	assert.Equal(t, GoalInProgress, GoalNotStarted.Next())
	assert.Equal(t, GoalNotStarted, GoalBlocked.Next())

	s, err := ParseGoalStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, GoalInProgress, s)

	_, err = ParseGoalStatus("done")
	require.Error(t, err)
}

func TestEvent_Unmarshal(t *testing.T) {
	raw := `{
		"id": "e1",
		"summary": "Review",
		"start": {"dateTime": "2025-01-05T10:00:00-05:00"},
		"end": "2025-01-05T11:00:00-05:00",
		"attendees": ["sam@example.com", {"email": "ada@example.com", "displayName": "Ada"}]
	}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.Equal(t, "2025-01-05T10:00:00-05:00", ev.Start.DateTime)
	assert.Equal(t, "2025-01-05T11:00:00-05:00", ev.End.DateTime)
	require.Len(t, ev.Attendees, 2)
	assert.Equal(t, "sam@example.com", ev.Attendees[0].Name())
	assert.Equal(t, "Ada", ev.Attendees[1].Name())
}
