package calendar

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/colonyops/standup/pkg/iojson"
)

// GoalStatus is the backend-owned status of a project goal. Any status may
// follow any other.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalBlocked    GoalStatus = "blocked"
)

// GoalStatuses lists every goal status in display order.
func GoalStatuses() []GoalStatus {
	return []GoalStatus{GoalNotStarted, GoalInProgress, GoalCompleted, GoalBlocked}
}

// IsValid reports whether s is a known goal status.
func (s GoalStatus) IsValid() bool {
	return slices.Contains(GoalStatuses(), s)
}

// OrDefault returns s, or not_started when s is empty or unknown.
func (s GoalStatus) OrDefault() GoalStatus {
	if s.IsValid() {
		return s
	}
	return GoalNotStarted
}

// Next returns the status after s in display order, wrapping around.
func (s GoalStatus) Next() GoalStatus {
	all := GoalStatuses()
	i := slices.Index(all, s.OrDefault())
	return all[(i+1)%len(all)]
}

// Label is the human form shown in the calendar.
func (s GoalStatus) Label() string {
	switch s.OrDefault() {
	case GoalInProgress:
		return "In progress"
	case GoalCompleted:
		return "Completed"
	case GoalBlocked:
		return "Blocked"
	default:
		return "Not started"
	}
}

// ParseGoalStatus parses a goal status name, accepting '-' for '_'.
func ParseGoalStatus(s string) (GoalStatus, error) {
	st := GoalStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown goal status %q (want one of %v)", s, GoalStatuses())
	}
	return st, nil
}

// Goal is one goal of a project. Fields the client does not model are kept
// and written back unchanged.
type Goal struct {
	Goal     string     `json:"goal"`
	Deadline string     `json:"deadline"` // YYYY-MM-DD, may be empty
	Status   GoalStatus `json:"status"`

	raw map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Goal) UnmarshalJSON(data []byte) error {
	type plain Goal
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	raw, err := rawFields(data)
	if err != nil {
		return err
	}

	*g = Goal(p)
	g.raw = raw
	return nil
}

// MarshalJSON implements json.Marshaler.
func (g Goal) MarshalJSON() ([]byte, error) {
	return mergeFields(g.raw, []field{
		{"goal", g.Goal, true},
		{"deadline", g.Deadline, g.Deadline != ""},
		{"status", g.Status, g.Status != ""},
	})
}

// Project is a user-defined project as the backend stores it. Updates replace
// the whole record, so unknown fields are kept and written back unchanged.
type Project struct {
	ID    iojson.FlexString `json:"id"`
	Name  string            `json:"name"`
	Goals []Goal            `json:"goals"`

	raw map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var pl plain
	if err := json.Unmarshal(data, &pl); err != nil {
		return err
	}
	raw, err := rawFields(data)
	if err != nil {
		return err
	}

	*p = Project(pl)
	p.raw = raw
	return nil
}

// MarshalJSON implements json.Marshaler. The id keeps its original JSON type.
func (p Project) MarshalJSON() ([]byte, error) {
	goals := p.Goals
	if goals == nil {
		goals = []Goal{}
	}

	_, hasID := p.raw["id"]
	return mergeFields(p.raw, []field{
		{"id", p.ID, !hasID},
		{"name", p.Name, true},
		{"goals", goals, true},
	})
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	c := p
	c.raw = maps.Clone(p.raw)
	c.Goals = make([]Goal, len(p.Goals))
	for i, g := range p.Goals {
		g.raw = maps.Clone(g.raw)
		c.Goals[i] = g
	}
	if p.Goals == nil {
		c.Goals = nil
	}
	return c
}

// DisplayName is the project's name, or its id when it has none.
func (p Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID.String()
}

type field struct {
	key   string
	value any
	set   bool
}

func rawFields(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func mergeFields(raw map[string]json.RawMessage, fields []field) ([]byte, error) {
	out := make(map[string]any, len(raw)+len(fields))
	for k, v := range raw {
		out[k] = v
	}
	for _, f := range fields {
		if f.set {
			out[f.key] = f.value
		}
	}
	return json.Marshal(out)
}
