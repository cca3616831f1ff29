package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/core/logging"
)

// focusLoadedMsg reports the end of a load or refresh.
type focusLoadedMsg struct {
	err error
}

// statusSavedMsg reports the end of a status change.
type statusSavedMsg struct {
	status focus.Status
	err    error
}

// calendarLoadedMsg reports the end of a calendar reload.
type calendarLoadedMsg struct {
	err error
}

// goalUpdatedMsg reports the end of a goal status change.
type goalUpdatedMsg struct {
	entry  calendar.Entry
	status calendar.GoalStatus
	err    error
}

// autoRefreshMsg fires when the configured refresh interval elapses.
type autoRefreshMsg time.Time

func (m Model) opContext(op string) context.Context {
	ctx := logging.WithUser(m.ctx, m.deps.Config.UserEmail)
	return logging.WithOperation(ctx, op)
}

func (m Model) loadFocusCmd(refresh bool) tea.Cmd {
	machine := m.deps.Focus
	ctx := m.opContext("tui.focus")
	return func() tea.Msg {
		if refresh {
			return focusLoadedMsg{err: machine.Refresh(ctx)}
		}
		return focusLoadedMsg{err: machine.Load(ctx)}
	}
}

func (m Model) setStatusCmd(s focus.Status) tea.Cmd {
	machine := m.deps.Focus
	ctx := m.opContext("tui.status")
	return func() tea.Msg {
		return statusSavedMsg{status: s, err: machine.SetStatus(ctx, s)}
	}
}

func (m Model) reloadCalendarCmd() tea.Cmd {
	agg := m.deps.Calendar
	ctx := m.opContext("tui.calendar")
	return func() tea.Msg {
		return calendarLoadedMsg{err: agg.Reload(ctx)}
	}
}

func (m Model) updateGoalCmd(e calendar.Entry, s calendar.GoalStatus) tea.Cmd {
	agg := m.deps.Calendar
	ctx := m.opContext("tui.goal")
	return func() tea.Msg {
		return goalUpdatedMsg{entry: e, status: s, err: agg.UpdateGoalStatus(ctx, e, s)}
	}
}

func (m Model) scheduleAutoRefresh() tea.Cmd {
	interval := m.deps.Config.TUI.RefreshInterval
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return autoRefreshMsg(t)
	})
}
