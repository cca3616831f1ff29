package focus

import (
	"encoding/json"

	"github.com/colonyops/standup/pkg/iojson"
)

// Payload is the analysis the backend produces for a user's day.
type Payload struct {
	TheOneThing         OneThing         `json:"theOneThing"`
	SecondaryPriorities []Priority       `json:"secondaryPriorities"`
	AutonomousTasks     []AutonomousTask `json:"autonomousTasks"`
	DailyPlan           []PlanBlock      `json:"dailyPlan"`
	Reasoning           string           `json:"reasoning"`
}

// OneThing is the single recommended focus for the day.
type OneThing struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Action      string  `json:"action"`
	Project     string  `json:"project"`
	Urgency     float64 `json:"urgency"` // 0-100
}

// Priority is a lower-ranked candidate. Fresh analyses carry Urgency
// (0-100); cached ones carry Confidence (0-1).
type Priority struct {
	Title      string   `json:"title"`
	Action     string   `json:"action"`
	Project    string   `json:"project"`
	Urgency    *float64 `json:"urgency,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// AutonomousTask is something the backend agent handled on its own.
type AutonomousTask struct {
	Title  string `json:"title"`
	Action string `json:"action"`
	Status string `json:"status"`
}

// PlanBlock is one scheduled block of the daily plan.
type PlanBlock struct {
	Time     string            `json:"time"`
	Task     string            `json:"task"`
	Duration iojson.FlexString `json:"duration"`
}

// UnmarshalJSON accepts both the camelCase keys of a fresh analysis and the
// snake_case keys the cached standup endpoint returns.
func (p *Payload) UnmarshalJSON(data []byte) error {
	type camel Payload
	var c camel
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}

	var s struct {
		TheOneThing         *OneThing        `json:"the_one_thing"`
		SecondaryPriorities []Priority       `json:"secondary_priorities"`
		AutonomousTasks     []AutonomousTask `json:"autonomous_tasks"`
		DailyPlan           []PlanBlock      `json:"daily_plan"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*p = Payload(c)
	if s.TheOneThing != nil && p.TheOneThing == (OneThing{}) {
		p.TheOneThing = *s.TheOneThing
	}
	if p.SecondaryPriorities == nil {
		p.SecondaryPriorities = s.SecondaryPriorities
	}
	if p.AutonomousTasks == nil {
		p.AutonomousTasks = s.AutonomousTasks
	}
	if p.DailyPlan == nil {
		p.DailyPlan = s.DailyPlan
	}

	return nil
}
