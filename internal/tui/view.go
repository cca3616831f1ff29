package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/core/styles"
)

const sideBySideWidth = 100

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}

	header := m.renderHeader()

	var helpView string
	if m.active == paneFocus {
		helpView = m.help.View(focusKeys(m.keys))
	} else {
		helpView = m.help.View(calendarKeys(m.keys))
	}

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(helpView), 6)

	var body string
	if m.width >= sideBySideWidth {
		focusW := m.width * 2 / 5
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderFocusPane(focusW, bodyHeight),
			m.renderCalendarPane(m.width-focusW, bodyHeight),
		)
	} else {
		top := bodyHeight / 2
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderFocusPane(m.width, top),
			m.renderCalendarPane(m.width, bodyHeight-top),
		)
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, styles.HelpStyle.Render(helpView))
	return m.toastView.Overlay(screen, m.width, m.height)
}

func (m Model) renderHeader() string {
	title := styles.CommandHeaderStyle.Render(styles.IconTarget + " standup")
	user := styles.MutedStyle.Render(m.deps.Config.UserEmail)
	date := styles.MutedStyle.Render(m.now().Format("Monday, January 2"))

	parts := []string{title, date, user}
	if m.deps.Version != "" {
		parts = append(parts, styles.MutedStyle.Render(m.deps.Version))
	}
	return strings.Join(parts, styles.DividerStyle.Render(" · "))
}

// paneFrame wraps content in the pane border, highlighted when active.
func (m Model) paneFrame(p pane, content string, width, height int) string {
	style := styles.PaneStyle
	if m.active == p {
		style = styles.PaneFocusedStyle
	}
	// Width and Height exclude the border.
	return style.
		Width(max(width-2, 10)).
		Height(max(height-2, 3)).
		MaxHeight(height).
		Render(content)
}

func (m Model) renderFocusPane(width, height int) string {
	inner := max(width-4, 10)
	s := m.focus

	var b strings.Builder

	heading := styles.PaneTitleStyle.Render("Today's focus")
	if m.loadingFocus {
		heading += " " + m.spinner.View()
	}
	b.WriteString(heading + "\n")

	titleStyle := styles.FocusTitleStyle
	if s.Placeholder {
		titleStyle = styles.PlaceholderTitleStyle
	}
	b.WriteString(titleStyle.Width(inner).Render(s.ActiveTask.Title) + "\n")
	if s.ActiveTask.Subtitle != "" {
		b.WriteString(styles.FocusSubtitleStyle.Width(inner).Render(s.ActiveTask.Subtitle) + "\n")
	}

	if !s.Placeholder {
		meta := []string{
			statusIcon(s.Status) + " " + s.Status.Label(),
			lipgloss.NewStyle().Foreground(styles.UrgencyColor(s.ActiveTask.Urgency)).Render(fmt.Sprintf("urgency %d", s.ActiveTask.Urgency)),
		}
		if s.ActiveTask.Project != "" {
			meta = append(meta, lipgloss.NewStyle().Foreground(styles.ColorForString(s.ActiveTask.Project)).Render(s.ActiveTask.Project))
		}
		b.WriteString(strings.Join(meta, styles.DividerStyle.Render(" · ")) + "\n")
	}

	if s.ActiveTask.Action != "" {
		b.WriteString(styles.FocusActionStyle.Width(inner).Render("→ "+s.ActiveTask.Action) + "\n")
	}

	if len(s.Alternatives) > 0 {
		b.WriteString("\n" + styles.PaneTitleStyle.UnsetMarginBottom().Render(styles.IconSwap+" Alternatives") + "\n")
		for i, alt := range s.Alternatives {
			line := fmt.Sprintf("%s %s", alt.Decision, styles.MutedStyle.Render(fmt.Sprintf("%.0f%%", alt.Confidence*100)))
			if m.active == paneFocus && i == m.altCursor {
				b.WriteString(styles.AlternativeCursor.Render("> ") + line + "\n")
			} else {
				b.WriteString(styles.AlternativeStyle.Render(line) + "\n")
			}
		}
	}

	if len(s.DailyPlan) > 0 {
		b.WriteString("\n" + styles.PaneTitleStyle.UnsetMarginBottom().Render(styles.IconClock+" Plan") + "\n")
		for _, block := range s.DailyPlan {
			b.WriteString(fmt.Sprintf("%s %s\n", styles.MutedStyle.Render(block.Time), block.Task))
		}
	}

	if len(s.AutonomousTasks) > 0 {
		b.WriteString("\n" + styles.PaneTitleStyle.UnsetMarginBottom().Render(styles.IconRobot+" Handled for you") + "\n")
		for _, t := range s.AutonomousTasks {
			b.WriteString(styles.MutedStyle.Render("• "+t.Title) + "\n")
		}
	}

	return m.paneFrame(paneFocus, strings.TrimRight(b.String(), "\n"), width, height)
}

func (m Model) renderCalendarPane(width, height int) string {
	inner := max(width-4, 28)
	cellW := max(inner/7, 4)

	var b strings.Builder

	heading := styles.PaneTitleStyle.UnsetMarginBottom().Render(styles.IconCalendar + " " + m.month.Format("January 2006"))
	heading += styles.MutedStyle.Render("  " + m.filterLabel())
	if m.loadingCalendar {
		heading += " " + m.spinner.View()
	}
	b.WriteString(heading + "\n\n")

	cell := lipgloss.NewStyle().Width(cellW).Align(lipgloss.Center)
	for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(cell.Render(styles.WeekdayHeaderStyle.Render(d)))
	}
	b.WriteString("\n")

	cells := calendar.BuildMonthGrid(m.month.Year(), m.month.Month(), m.now())
	for _, week := range calendar.Weeks(cells) {
		for _, c := range week {
			b.WriteString(cell.Render(m.renderDay(c)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + styles.CommandHeaderStyle.Render(m.selected.Format("Monday, January 2")) + "\n")

	entries := m.selectedEntries()
	if len(entries) == 0 {
		b.WriteString(styles.MutedStyle.Render("Nothing scheduled") + "\n")
	}

	// Rows left below the grid: heading, blank, weekday row, six weeks,
	// blank, day heading and the border.
	room := max(height-2-12, 1)
	maxRows := m.deps.Config.Calendar.MaxPerDay
	if m.active == paneCalendar {
		maxRows = room
	}
	maxRows = min(maxRows, room)

	// Keep the cursor visible when the day holds more than fits.
	offset := 0
	if m.entryCursor >= maxRows {
		offset = m.entryCursor - maxRows + 1
	}
	shown, more := calendar.Truncate(entries[offset:], maxRows)
	for i, e := range shown {
		prefix := "  "
		if m.active == paneCalendar && offset+i == m.entryCursor {
			prefix = styles.AlternativeCursor.Render("> ")
		}
		b.WriteString(prefix + lipgloss.NewStyle().MaxWidth(inner-2).Render(entryLine(e)) + "\n")
	}
	if more > 0 {
		b.WriteString(styles.MoreEntriesStyle.Render(fmt.Sprintf("  %d more", more)) + "\n")
	}

	return m.paneFrame(paneCalendar, strings.TrimRight(b.String(), "\n"), width, height)
}

func (m Model) renderDay(c calendar.DayCell) string {
	label := fmt.Sprintf("%d", c.Day)
	if n := len(m.deps.Calendar.EntriesForDay(c.Date)); n > 0 {
		label += "•"
	}

	switch {
	case calendar.SameDay(c.Date, m.selected):
		return styles.DaySelectedStyle.Render(label)
	case c.IsToday:
		return styles.DayTodayStyle.Render(label)
	case !c.IsCurrentMonth:
		return styles.DayOutsideStyle.Render(label)
	default:
		return styles.DayStyle.Render(label)
	}
}

func entryLine(e calendar.Entry) string {
	if e.IsGoal() {
		source := lipgloss.NewStyle().Foreground(styles.ColorForString(e.Source)).Render(e.Source)
		return fmt.Sprintf("%s %s %s", GoalIcon(e.Status), source, styles.GoalEntryStyle.Render(e.Title))
	}

	when := "all day"
	if !e.AllDay && !e.Start.IsZero() {
		when = e.Start.Format("15:04")
	}
	return styles.MutedStyle.Render(when) + " " + styles.EventEntryStyle.Render(e.Title)
}

// GoalIcon renders the status mark of a project goal.
func GoalIcon(s calendar.GoalStatus) string {
	switch s.OrDefault() {
	case calendar.GoalInProgress:
		return styles.WarningStyle.Render(styles.IconStatusInProgress)
	case calendar.GoalCompleted:
		return styles.SuccessStyle.Render(styles.IconStatusComplete)
	case calendar.GoalBlocked:
		return styles.ErrorStyle.Render(styles.IconStatusBlocked)
	default:
		return styles.MutedStyle.Render(styles.IconStatusPreparing)
	}
}

func statusIcon(s focus.Status) string {
	switch s {
	case focus.StatusInProgress:
		return styles.WarningStyle.Render(styles.IconStatusInProgress)
	case focus.StatusComplete:
		return styles.SuccessStyle.Render(styles.IconStatusComplete)
	case focus.StatusBlocked:
		return styles.ErrorStyle.Render(styles.IconStatusBlocked)
	default:
		return styles.MutedStyle.Render(styles.IconStatusPreparing)
	}
}
