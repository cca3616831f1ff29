package mockserver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/focus"
)

// Fixture is the demo data a seeded user starts with.
type Fixture struct {
	Analysis focus.Payload
	Projects []calendar.Project
	Events   []calendar.Event
}

// DemoFixture builds demo data with dates relative to now.
func DemoFixture(now time.Time) Fixture {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(time.DateOnly)
	}
	at := func(offset, hour, minute int) string {
		y, m, d := now.AddDate(0, 0, offset).Date()
		return time.Date(y, m, d, hour, minute, 0, 0, now.Location()).Format(time.RFC3339)
	}
	urgency := func(v float64) *float64 { return &v }

	analysis := focus.Payload{
		TheOneThing: focus.OneThing{
			Title:       "Finish the Q3 board deck",
			Description: "Board meeting is Thursday and the revenue section is still empty.",
			Action:      "Pull the revenue numbers from the finance sheet",
			Project:     "Board prep",
			Urgency:     91,
		},
		SecondaryPriorities: []focus.Priority{
			{Title: "Reply to the Acme renewal thread", Action: "Confirm the discount", Project: "Sales", Urgency: urgency(74)},
			{Title: "Review Priya's hiring plan", Action: "Leave comments in the doc", Project: "Hiring", Urgency: urgency(58)},
			{Title: "Book flights for the offsite", Action: "Check the travel policy", Project: "Offsite", Urgency: urgency(31)},
		},
		AutonomousTasks: []focus.AutonomousTask{
			{Title: "Archived 14 newsletters", Action: "archive", Status: "done"},
			{Title: "Drafted reply to the recruiter", Action: "draft", Status: "pending_review"},
		},
		DailyPlan: []focus.PlanBlock{
			{Time: "09:00", Task: "Board deck: revenue section", Duration: "90 min"},
			{Time: "11:00", Task: "Acme renewal reply", Duration: "30 min"},
			{Time: "14:00", Task: "Hiring plan review", Duration: "45 min"},
		},
		Reasoning: "The board deck has a **hard deadline** in two days and blocks three other people. " +
			"The Acme renewal is time-sensitive but small, so it fits after the deep-work block.",
	}

	projects := mustDecode[[]calendar.Project](fmt.Sprintf(`[
		{"id": "board", "name": "Board prep", "description": "Quarterly board meeting", "goals": [
			{"goal": "Revenue section done", "deadline": %q, "status": "in_progress"},
			{"goal": "Dry run with CFO", "deadline": %q, "status": "not_started"},
			{"goal": "Collect department updates", "status": "completed"}
		]},
		{"id": "hiring", "name": "Hiring", "goals": [
			{"goal": "Approve hiring plan", "deadline": %q, "status": "blocked"},
			{"goal": "Open two backend reqs", "deadline": %q}
		]},
		{"id": "offsite", "name": "Offsite", "goals": [
			{"goal": "Venue contract signed", "deadline": %q, "status": "not_started"}
		]}
	]`, day(2), day(1), day(0), day(9), day(16)))

	events := mustDecode[[]calendar.Event](fmt.Sprintf(`[
		{"id": "evt-standup", "summary": "Team standup", "start": {"dateTime": %q}, "end": {"dateTime": %q}, "location": "Zoom"},
		{"id": "evt-board", "summary": "Board meeting", "start": {"dateTime": %q}, "end": {"dateTime": %q}, "location": "HQ boardroom",
			"attendees": ["cfo@example.com", {"email": "ceo@example.com", "displayName": "Jordan"}]},
		{"summary": "Company holiday", "start": {"date": %q}, "end": {"date": %q}},
		{"id": "evt-1on1", "summary": "1:1 with Priya", "start": %q, "end": %q, "description": "Hiring plan follow-up"}
	]`,
		at(0, 9, 30), at(0, 9, 45),
		at(2, 13, 0), at(2, 15, 0),
		day(11), day(12),
		at(1, 16, 0), at(1, 16, 30),
	))

	return Fixture{Analysis: analysis, Projects: projects, Events: events}
}

func mustDecode[T any](raw string) T {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		panic(fmt.Sprintf("mockserver: bad fixture: %v", err))
	}
	return v
}
