// Package tui implements the standup dashboard: today's focus next to a
// month calendar of goal deadlines and events.
package tui

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/config"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/core/notify"
	"github.com/colonyops/standup/internal/core/styles"
)

type pane int

const (
	paneFocus pane = iota
	paneCalendar
)

// Deps are the services the dashboard drives.
type Deps struct {
	Focus    *focus.Machine
	Calendar *calendar.Aggregator
	Bus      *notify.Bus
	Config   *config.Config
	Version  string
}

// Model is the root bubbletea model.
type Model struct {
	ctx  context.Context
	deps Deps
	keys keyMap
	help help.Model

	spinner spinner.Model

	width  int
	height int
	active pane

	focus        focus.State
	altCursor    int
	loadingFocus bool

	loadingCalendar bool
	month           time.Time // first day of the shown month
	selected        time.Time // local midnight of the selected day
	entryCursor     int
	filters         []string // "" means all projects
	filterIdx       int

	toasts        *ToastController
	toastView     *ToastView
	notifications *NotificationBuffer

	now func() time.Time
}

// New creates the dashboard. Notifications published on deps.Bus show as
// toasts from then on.
func New(ctx context.Context, deps Deps) Model {
	buf := NewNotificationBuffer()
	if deps.Bus != nil {
		deps.Bus.Subscribe(buf.Push)
	}

	toasts := NewToastController()
	today := calendar.StartOfDay(time.Now())

	return Model{
		ctx:  ctx,
		deps: deps,
		keys: defaultKeyMap(),
		help: help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.ColorPrimary)),
		),
		focus:           deps.Focus.State(),
		loadingFocus:    true,
		loadingCalendar: true,
		month:           firstOfMonth(today),
		selected:        today,
		filters:         []string{""},
		toasts:          toasts,
		toastView:       NewToastView(toasts),
		notifications:   buf,
		now:             time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadFocusCmd(false),
		m.reloadCalendarCmd(),
		m.notifications.WaitForSignal(),
		m.spinner.Tick,
		m.scheduleAutoRefresh(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case drainNotificationsMsg:
		for _, n := range m.notifications.Drain() {
			m.toasts.Push(n)
		}
		cmds := []tea.Cmd{m.notifications.WaitForSignal()}
		if m.toasts.HasToasts() && !m.toasts.Ticking() {
			m.toasts.SetTicking(true)
			cmds = append(cmds, scheduleToastTick())
		}
		return m, tea.Batch(cmds...)

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case focusLoadedMsg:
		if errors.Is(msg.err, focus.ErrStaleLoad) {
			return m, nil
		}
		m.loadingFocus = false
		m.syncFocus()
		return m, nil

	case statusSavedMsg:
		if msg.err != nil {
			log.Debug().Err(msg.err).Str("status", string(msg.status)).Msg("status not saved")
		}
		m.syncFocus()
		return m, nil

	case calendarLoadedMsg:
		m.loadingCalendar = false
		m.syncFilters()
		return m, nil

	case goalUpdatedMsg:
		if msg.err == nil {
			log.Debug().Str("entry", msg.entry.ID).Str("status", string(msg.status)).Msg("goal updated")
		}
		m.clampEntryCursor()
		return m, nil

	case autoRefreshMsg:
		m.loadingCalendar = true
		return m, tea.Batch(m.loadFocusCmd(false), m.reloadCalendarCmd(), m.scheduleAutoRefresh())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.SwitchPane):
		if m.active == paneFocus {
			m.active = paneCalendar
		} else {
			m.active = paneFocus
		}
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissAll()
		return m, nil
	case key.Matches(msg, m.keys.ReloadCalendar):
		m.loadingCalendar = true
		return m, m.reloadCalendarCmd()
	}

	if m.active == paneFocus {
		return m.handleFocusKey(msg)
	}
	return m.handleCalendarKey(msg)
}

func (m Model) handleFocusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.altCursor = max(m.altCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.altCursor = min(m.altCursor+1, max(len(m.focus.Alternatives)-1, 0))
	case key.Matches(msg, m.keys.Swap):
		if len(m.focus.Alternatives) == 0 {
			return m, nil
		}
		if err := m.deps.Focus.Swap(m.altCursor); err != nil {
			log.Warn().Err(err).Int("index", m.altCursor).Msg("swap failed")
		}
		m.syncFocus()
	case key.Matches(msg, m.keys.SetStatus):
		i := int(msg.String()[0] - '1')
		all := focus.Statuses()
		if i < 0 || i >= len(all) {
			return m, nil
		}
		m.focus.Status = all[i]
		return m, m.setStatusCmd(all[i])
	case key.Matches(msg, m.keys.Refresh):
		m.loadingFocus = true
		return m, m.loadFocusCmd(true)
	}
	return m, nil
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.selectDay(m.selected.AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.Right):
		m.selectDay(m.selected.AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Up):
		m.selectDay(m.selected.AddDate(0, 0, -7))
	case key.Matches(msg, m.keys.Down):
		m.selectDay(m.selected.AddDate(0, 0, 7))
	case key.Matches(msg, m.keys.PrevMonth):
		m.selectDay(m.month.AddDate(0, -1, 0))
	case key.Matches(msg, m.keys.NextMonth):
		m.selectDay(m.month.AddDate(0, 1, 0))
	case key.Matches(msg, m.keys.Today):
		m.selectDay(calendar.StartOfDay(m.now()))
	case key.Matches(msg, m.keys.NextEntry):
		if n := len(m.selectedEntries()); n > 0 {
			m.entryCursor = (m.entryCursor + 1) % n
		}
	case key.Matches(msg, m.keys.CycleGoal):
		entries := m.selectedEntries()
		if m.entryCursor >= len(entries) || !entries[m.entryCursor].IsGoal() {
			return m, nil
		}
		e := entries[m.entryCursor]
		return m, m.updateGoalCmd(e, e.Status.Next())
	case key.Matches(msg, m.keys.CycleFilter):
		m.filterIdx = (m.filterIdx + 1) % len(m.filters)
		m.deps.Calendar.SetFilter(m.filters[m.filterIdx])
		m.clampEntryCursor()
	case key.Matches(msg, m.keys.Refresh):
		m.loadingCalendar = true
		return m, m.reloadCalendarCmd()
	}
	return m, nil
}

// syncFocus copies the machine state into the model.
func (m *Model) syncFocus() {
	m.focus = m.deps.Focus.State()
	m.altCursor = min(m.altCursor, max(len(m.focus.Alternatives)-1, 0))
}

// syncFilters rebuilds the filter cycle from the loaded projects, keeping the
// current filter when the project still exists.
func (m *Model) syncFilters() {
	current := m.filters[m.filterIdx]

	filters := []string{""}
	for _, p := range m.deps.Calendar.Projects() {
		filters = append(filters, p.ID.String())
	}

	m.filters = filters
	m.filterIdx = max(slices.Index(filters, current), 0)
	if m.filterIdx == 0 && current != "" {
		m.deps.Calendar.SetFilter("")
	}
	m.clampEntryCursor()
}

func (m *Model) selectDay(day time.Time) {
	m.selected = calendar.StartOfDay(day)
	m.month = firstOfMonth(m.selected)
	m.entryCursor = 0
}

func (m *Model) clampEntryCursor() {
	m.entryCursor = min(m.entryCursor, max(len(m.selectedEntries())-1, 0))
}

func (m Model) selectedEntries() []calendar.Entry {
	return m.deps.Calendar.EntriesForDay(m.selected)
}

func (m Model) filterLabel() string {
	f := m.filters[m.filterIdx]
	if f == "" {
		return "all projects"
	}
	for _, p := range m.deps.Calendar.Projects() {
		if p.ID.String() == f {
			return p.DisplayName()
		}
	}
	return f
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}
