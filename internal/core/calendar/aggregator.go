package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/standup/internal/core/notify"
	"github.com/colonyops/standup/internal/core/optimistic"
)

var (
	// ErrNotProjectGoal is returned when a goal operation gets a calendar event.
	ErrNotProjectGoal = errors.New("entry is not a project goal")
	// ErrGoalNotFound is returned when the entry's goal no longer exists on
	// its project.
	ErrGoalNotFound = errors.New("goal not found on project")
	// ErrInvalidGoalStatus is returned for an unknown goal status.
	ErrInvalidGoalStatus = errors.New("invalid goal status")
)

// ProjectStore reads and replaces projects on the backend.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]Project, error)
	// UpdateProject replaces the whole project and returns the stored copy.
	UpdateProject(ctx context.Context, p Project) (Project, error)
}

// EventSource lists upcoming calendar events.
type EventSource interface {
	ListEvents(ctx context.Context, days int) ([]Event, error)
}

// Aggregator keeps the merged calendar in sync with its inputs. Any change to
// projects, events or the filter recomputes the entries. It is safe for
// concurrent use; the lock is never held across backend calls.
type Aggregator struct {
	projectStore ProjectStore
	eventSource  EventSource
	days         int
	reporter     notify.Reporter
	log          zerolog.Logger

	mu       sync.Mutex
	projects []Project
	events   []Event
	filter   string
	entries  []Entry
}

// NewAggregator creates an Aggregator that fetches days of events on Reload.
func NewAggregator(projects ProjectStore, events EventSource, days int, reporter notify.Reporter, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		projectStore: projects,
		eventSource:  events,
		days:         days,
		reporter:     reporter,
		log:          log.With().Str("component", "calendar").Logger(),
	}
}

// Entries returns a copy of the merged entries.
func (a *Aggregator) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.entries)
}

// Projects returns a copy of the current projects.
func (a *Aggregator) Projects() []Project {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Project, len(a.projects))
	for i, p := range a.projects {
		out[i] = p.Clone()
	}
	return out
}

// Filter returns the active project filter.
func (a *Aggregator) Filter() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

// EntriesForDay returns the merged entries on day.
func (a *Aggregator) EntriesForDay(day time.Time) []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return EntriesForDay(a.entries, day)
}

// SetProjects replaces the projects.
func (a *Aggregator) SetProjects(projects []Project) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.projects = projects
	a.recomputeLocked()
}

// SetEvents replaces the calendar events.
func (a *Aggregator) SetEvents(events []Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = events
	a.recomputeLocked()
}

// SetFilter replaces the project filter. An empty filter shows every project.
func (a *Aggregator) SetFilter(filter string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = filter
	a.recomputeLocked()
}

// Reload fetches projects and events. Whichever succeeds is applied; the
// failures are reported and returned joined.
func (a *Aggregator) Reload(ctx context.Context) error {
	var errs []error

	projects, err := a.projectStore.ListProjects(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list projects: %w", err))
	} else {
		a.SetProjects(projects)
	}

	events, err := a.eventSource.ListEvents(ctx, a.days)
	if err != nil {
		errs = append(errs, fmt.Errorf("list events: %w", err))
	} else {
		a.SetEvents(events)
	}

	if err := errors.Join(errs...); err != nil {
		a.log.Error().Err(err).Msg("calendar reload failed")
		if a.reporter != nil {
			a.reporter.Errorf("calendar", "unable to load calendar: %v", err)
		}
		return err
	}

	a.log.Debug().
		Int("projects", len(projects)).
		Int("events", len(events)).
		Msg("calendar reloaded")
	return nil
}

// UpdateGoalStatus sets the status of the goal behind entry. The entry shows
// the new status at once; the owning project is then replaced on the backend.
// On success the stored project replaces the local copy. On failure the entry
// reverts, the error is reported, and it is returned.
func (a *Aggregator) UpdateGoalStatus(ctx context.Context, entry Entry, status GoalStatus) error {
	if !entry.IsGoal() {
		return ErrNotProjectGoal
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidGoalStatus, status)
	}

	a.mu.Lock()
	updated, err := a.prepareGoalUpdateLocked(entry, status)
	a.mu.Unlock()
	if err != nil {
		return err
	}

	var confirmed Project

	err = optimistic.Run(ctx, a.reporter, optimistic.Update[GoalStatus]{
		Source: "calendar",
		Action: fmt.Sprintf("update goal %q", entry.Title),
		Snapshot: func() GoalStatus {
			a.mu.Lock()
			defer a.mu.Unlock()
			if i := a.entryIndexLocked(entry.ID); i >= 0 {
				return a.entries[i].Status
			}
			return entry.Status
		},
		Apply: func() {
			a.setEntryStatus(entry.ID, status, "")
		},
		Commit: func(ctx context.Context) error {
			p, err := a.projectStore.UpdateProject(ctx, updated)
			if err != nil {
				return err
			}
			if p.ID == "" {
				p.ID = updated.ID
			}
			confirmed = p
			return nil
		},
		Restore: func(prev GoalStatus) {
			a.setEntryStatus(entry.ID, prev, status)
		},
	})
	if err != nil {
		a.log.Warn().Err(err).Str("project", entry.ProjectID).Str("goal", entry.Title).Msg("goal status update failed")
		return err
	}

	a.reconcile(confirmed)
	a.log.Debug().Str("project", entry.ProjectID).Str("goal", entry.Title).Str("status", string(status)).Msg("goal status updated")
	return nil
}

// prepareGoalUpdateLocked returns a copy of entry's project with the goal's
// status changed. The goal is found by index, checked against the title, and
// by title when the index no longer lines up.
func (a *Aggregator) prepareGoalUpdateLocked(entry Entry, status GoalStatus) (Project, error) {
	pi := slices.IndexFunc(a.projects, func(p Project) bool {
		return p.ID.String() == entry.ProjectID
	})
	if pi < 0 {
		return Project{}, fmt.Errorf("project %s: %w", entry.ProjectID, ErrGoalNotFound)
	}

	p := a.projects[pi].Clone()

	gi := entry.GoalIndex
	if gi < 0 || gi >= len(p.Goals) || p.Goals[gi].Goal != entry.Title {
		gi = slices.IndexFunc(p.Goals, func(g Goal) bool { return g.Goal == entry.Title })
	}
	if gi < 0 {
		return Project{}, fmt.Errorf("goal %q on project %s: %w", entry.Title, entry.ProjectID, ErrGoalNotFound)
	}

	p.Goals[gi].Status = status
	return p, nil
}

// setEntryStatus sets the entry's status. A non-empty only value limits the
// change to entries still showing that status.
func (a *Aggregator) setEntryStatus(id string, status, only GoalStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.entryIndexLocked(id)
	if i < 0 {
		return
	}
	if only != "" && a.entries[i].Status != only {
		return
	}
	a.entries[i].Status = status
}

// reconcile swaps in the server's copy of one project and recomputes.
func (a *Aggregator) reconcile(p Project) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := p.ID.String()
	i := slices.IndexFunc(a.projects, func(q Project) bool { return q.ID.String() == id })
	projects := slices.Clone(a.projects)
	if i < 0 {
		projects = append(projects, p)
	} else {
		projects[i] = p
	}
	a.projects = projects
	a.recomputeLocked()
}

func (a *Aggregator) entryIndexLocked(id string) int {
	return slices.IndexFunc(a.entries, func(e Entry) bool { return e.ID == id })
}

func (a *Aggregator) recomputeLocked() {
	a.entries = Aggregate(a.projects, a.events, a.filter)
}
