package focus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/standup/internal/core/notify"
	"github.com/colonyops/standup/internal/core/optimistic"
)

var (
	// ErrAlternativeOutOfRange is returned by Swap for an index outside the
	// alternatives.
	ErrAlternativeOutOfRange = errors.New("alternative index out of range")
	// ErrStaleLoad is returned when a newer load superseded this one. The
	// result was discarded.
	ErrStaleLoad = errors.New("load superseded by a newer load")
	// ErrInvalidStatus is returned by SetStatus for an unknown status.
	ErrInvalidStatus = errors.New("invalid status")
)

// Source fetches the day's analysis.
type Source interface {
	// Today returns the analysis already produced for today, if any.
	Today(ctx context.Context) (Payload, bool, error)
	// Analyze runs a fresh analysis.
	Analyze(ctx context.Context) (Payload, error)
}

// StatusRecord is a persisted status as the backend returns it.
type StatusRecord struct {
	ID     string
	Status BackendStatus
}

// StatusStore persists the status of the active task, one record per task
// title per user per day.
type StatusStore interface {
	LookupStatus(ctx context.Context, taskTitle string) (StatusRecord, bool, error)
	SaveStatus(ctx context.Context, snap StatusSnapshot) (string, error)
}

// SavedPriority is an alternative in the persisted shape.
type SavedPriority struct {
	Title   string `json:"title"`
	Action  string `json:"action"`
	Project string `json:"project"`
	Urgency int    `json:"urgency"`
}

// StatusSnapshot is the status record sent to the backend.
type StatusSnapshot struct {
	ID                  string          `json:"id,omitempty"`
	TaskTitle           string          `json:"task_title"`
	TaskDescription     string          `json:"task_description"`
	TaskProject         string          `json:"task_project"`
	Urgency             int             `json:"urgency"`
	Status              BackendStatus   `json:"status"`
	AIReasoning         string          `json:"ai_reasoning"`
	SecondaryPriorities []SavedPriority `json:"secondary_priorities"`
	DailyPlan           []PlanBlock     `json:"daily_plan"`
}

// Machine owns the focus state. It is safe for concurrent use; the lock is
// never held across backend calls.
type Machine struct {
	source   Source
	statuses StatusStore
	reporter notify.Reporter
	log      zerolog.Logger

	mu        sync.Mutex
	state     State
	gen       uint64
	recordIDs map[string]string // task title -> status record id
}

// NewMachine creates a Machine. A nil statuses store keeps status local.
func NewMachine(source Source, statuses StatusStore, reporter notify.Reporter, log zerolog.Logger) *Machine {
	return &Machine{
		source:    source,
		statuses:  statuses,
		reporter:  reporter,
		log:       log.With().Str("component", "focus").Logger(),
		recordIDs: make(map[string]string),
	}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Load fetches today's analysis, reusing one that already exists, and
// replaces the state with it. On failure the state becomes the unavailable
// placeholder and the error is returned.
func (m *Machine) Load(ctx context.Context) error {
	return m.load(ctx, false)
}

// Refresh runs a fresh analysis and replaces the state with it.
func (m *Machine) Refresh(ctx context.Context) error {
	return m.load(ctx, true)
}

// Apply replaces the state with an already fetched payload.
func (m *Machine) Apply(ctx context.Context, p Payload) error {
	return m.apply(ctx, m.nextGen(), p)
}

func (m *Machine) load(ctx context.Context, refresh bool) error {
	gen := m.nextGen()

	p, err := m.fetch(ctx, refresh)
	if err != nil {
		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return ErrStaleLoad
		}
		m.state = UnavailableState()
		m.mu.Unlock()

		m.log.Error().Err(err).Bool("refresh", refresh).Msg("failed to load standup")
		if m.reporter != nil {
			m.reporter.Errorf("focus", "unable to load standup: %v", err)
		}
		return fmt.Errorf("load standup: %w", err)
	}

	return m.apply(ctx, gen, p)
}

func (m *Machine) fetch(ctx context.Context, refresh bool) (Payload, error) {
	if !refresh {
		p, ok, err := m.source.Today(ctx)
		if err != nil {
			return Payload{}, fmt.Errorf("today: %w", err)
		}
		if ok {
			return p, nil
		}
	}

	p, err := m.source.Analyze(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("analyze: %w", err)
	}
	return p, nil
}

func (m *Machine) apply(ctx context.Context, gen uint64, p Payload) error {
	next := NewState(p)
	title := next.ActiveTask.Title

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return ErrStaleLoad
	}
	if !m.state.Placeholder && m.state.ActiveTask.Title == title {
		next.Status = m.state.Status
	}
	m.state = next
	m.mu.Unlock()

	m.log.Debug().
		Str("title", title).
		Int("alternatives", len(next.Alternatives)).
		Msg("standup loaded")

	if m.statuses == nil || IsPlaceholderTitle(title) {
		return nil
	}
	m.syncStatus(ctx, gen, title)
	return nil
}

// syncStatus applies the persisted status for title, or persists the local
// one when the backend has none. Failures are logged; the local status stands.
func (m *Machine) syncStatus(ctx context.Context, gen uint64, title string) {
	rec, found, err := m.statuses.LookupStatus(ctx, title)
	if err != nil {
		m.log.Warn().Err(err).Str("title", title).Msg("status lookup failed")
		return
	}

	m.mu.Lock()
	if gen != m.gen || m.state.ActiveTask.Title != title {
		m.mu.Unlock()
		return
	}
	if found {
		if rec.ID != "" {
			m.recordIDs[title] = rec.ID
		}
		m.state.Status = FromBackend(rec.Status)
		m.mu.Unlock()
		return
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persist(ctx, snap); err != nil {
		m.log.Warn().Err(err).Str("title", title).Msg("initial status save failed")
	}
}

// Swap moves alternative i into focus.
func (m *Machine) Swap(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i < 0 || i >= len(m.state.Alternatives) {
		return fmt.Errorf("swap %d of %d: %w", i, len(m.state.Alternatives), ErrAlternativeOutOfRange)
	}

	m.state.swap(i)
	m.log.Debug().Str("title", m.state.ActiveTask.Title).Msg("swapped focus")
	return nil
}

// SetStatus updates the status locally, then persists it under the active
// task's title. A failed save restores the previous status and is reported.
func (m *Machine) SetStatus(ctx context.Context, s Status) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}

	var (
		title string
		snap  StatusSnapshot
	)

	return optimistic.Run(ctx, m.reporter, optimistic.Update[Status]{
		Source: "focus",
		Action: "save status",
		Snapshot: func() Status {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.state.Status
		},
		Apply: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.state.Status = s
			title = m.state.ActiveTask.Title
			snap = m.snapshotLocked()
		},
		Commit: func(ctx context.Context) error {
			if m.statuses == nil || snap.TaskTitle == "" || IsPlaceholderTitle(snap.TaskTitle) {
				return nil
			}
			return m.persist(ctx, snap)
		},
		Restore: func(prev Status) {
			m.mu.Lock()
			defer m.mu.Unlock()
			// A swap or load since Apply owns the status now.
			if m.state.ActiveTask.Title == title && m.state.Status == s {
				m.state.Status = prev
			}
		},
	})
}

func (m *Machine) persist(ctx context.Context, snap StatusSnapshot) error {
	id, err := m.statuses.SaveStatus(ctx, snap)
	if err != nil {
		return err
	}

	if id != "" {
		m.mu.Lock()
		m.recordIDs[snap.TaskTitle] = id
		m.mu.Unlock()
	}
	return nil
}

func (m *Machine) snapshotLocked() StatusSnapshot {
	snap := m.state.snapshot()
	snap.ID = m.recordIDs[snap.TaskTitle]
	return snap
}

func (m *Machine) nextGen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return m.gen
}
