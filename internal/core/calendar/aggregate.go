// Package calendar merges project-goal deadlines and calendar events into one
// date-ordered list and lays it out as a month grid.
package calendar

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// EntryType tells where an entry came from.
type EntryType string

const (
	TypeProjectGoal   EntryType = "project_goal"
	TypeCalendarEvent EntryType = "calendar_event"
)

// SourceCalendar labels entries that came from the calendar provider.
const SourceCalendar = "Calendar"

// eventNamespace seeds the ids of events that arrive without one.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("standup/calendar-event"))

// Entry is one renderable item of the merged calendar.
type Entry struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Date   time.Time `json:"date"` // local midnight of the entry's day
	Type   EntryType `json:"type"`
	Source string    `json:"source"`

	// Project goals only.
	ProjectID   string     `json:"project_id,omitempty"`
	ProjectName string     `json:"project_name,omitempty"`
	GoalIndex   int        `json:"goal_index"`
	Status      GoalStatus `json:"status,omitempty"`

	// Calendar events only.
	Start       time.Time `json:"start,omitzero"`
	AllDay      bool      `json:"all_day,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// IsGoal reports whether e is a project goal.
func (e Entry) IsGoal() bool {
	return e.Type == TypeProjectGoal
}

// Aggregate merges goals with deadlines and events into one list sorted by
// day. Goals come before events on the same day; otherwise input order is
// kept. Projects not matching filter are skipped. Entries whose date cannot
// be parsed are dropped. The result depends only on the inputs.
func Aggregate(projects []Project, events []Event, filter string) []Entry {
	entries := make([]Entry, 0, len(events)+len(projects))

	for _, p := range projects {
		if !MatchProject(p, filter) {
			continue
		}
		entries = append(entries, goalEntries(p)...)
	}

	for i, ev := range events {
		e, ok := eventEntry(ev, i)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Date.Compare(b.Date)
	})
	return entries
}

// goalEntries returns the entries for one project's dated goals, in goal
// order.
func goalEntries(p Project) []Entry {
	var (
		entries []Entry
		seen    = make(map[string]bool)
		pid     = p.ID.String()
	)

	for i, g := range p.Goals {
		if strings.TrimSpace(g.Deadline) == "" {
			continue
		}

		id := goalEntryID(pid, g.Goal, i, seen[g.Goal])
		seen[g.Goal] = true

		date, err := ParseLocalDate(g.Deadline)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{
			ID:          id,
			Title:       g.Goal,
			Date:        date,
			Type:        TypeProjectGoal,
			Source:      p.DisplayName(),
			ProjectID:   pid,
			ProjectName: p.Name,
			GoalIndex:   i,
			Status:      g.Status.OrDefault(),
		})
	}
	return entries
}

var (
	idPartEscaper   = strings.NewReplacer("%", "%25", "-", "%2D", "#", "%23")
	goalTextEscaper = strings.NewReplacer("%", "%25", "#", "%23")
)

// goalEntryID is "goal-{project}-{text}", with "#{index}" appended when the
// text already appeared earlier in the project. The project id has "-"
// escaped and the text has "#" escaped, so distinct goals never share an id.
func goalEntryID(projectID, text string, index int, repeated bool) string {
	id := "goal-" + idPartEscaper.Replace(projectID) + "-" + goalTextEscaper.Replace(text)
	if repeated {
		id += "#" + strconv.Itoa(index)
	}
	return id
}

func eventEntry(ev Event, index int) (Entry, bool) {
	start, err := ev.Start.Time()
	if err != nil {
		return Entry{}, false
	}

	id := ev.ID.String()
	if id == "" {
		seed := fmt.Sprintf("%s|%s|%d", ev.Summary, ev.Start.String(), index)
		id = uuid.NewSHA1(eventNamespace, []byte(seed)).String()
	}

	title := ev.Summary
	if title == "" {
		title = "(no title)"
	}

	return Entry{
		ID:          "calendar-" + id,
		Title:       title,
		Date:        StartOfDay(start),
		Type:        TypeCalendarEvent,
		Source:      SourceCalendar,
		Start:       start,
		AllDay:      ev.Start.AllDay(),
		Location:    ev.Location,
		Description: ev.Description,
	}, true
}

// MatchProject reports whether p passes filter. An empty filter matches
// everything. Otherwise the filter is compared case-insensitively to the id
// and name, and as a glob pattern against both.
func MatchProject(p Project, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}

	for _, candidate := range []string{p.ID.String(), p.Name} {
		if candidate == "" {
			continue
		}
		if strings.EqualFold(candidate, filter) {
			return true
		}
		if ok, err := doublestar.Match(strings.ToLower(filter), strings.ToLower(candidate)); err == nil && ok {
			return true
		}
	}
	return false
}

// EntriesForDay returns the entries that fall on day's calendar date.
func EntriesForDay(entries []Entry, day time.Time) []Entry {
	var out []Entry
	for _, e := range entries {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// Truncate returns at most n entries and the number left out.
func Truncate(entries []Entry, n int) ([]Entry, int) {
	if n < 0 {
		n = 0
	}
	if len(entries) <= n {
		return entries, 0
	}
	return entries[:n], len(entries) - n
}
