package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/core/styles"
	"github.com/colonyops/standup/internal/tui"
	"github.com/colonyops/standup/pkg/iojson"
)

const defaultWidth = 80

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return min(width, 120)
}

// focusMarkdown renders the focus state as a markdown document.
func focusMarkdown(s focus.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.ActiveTask.Title)
	if s.ActiveTask.Subtitle != "" {
		fmt.Fprintf(&b, "%s\n\n", s.ActiveTask.Subtitle)
	}

	if !s.Placeholder {
		meta := []string{fmt.Sprintf("**Status** %s", s.Status.Label())}
		meta = append(meta, fmt.Sprintf("**Urgency** %d", s.ActiveTask.Urgency))
		if s.ActiveTask.Project != "" {
			meta = append(meta, fmt.Sprintf("**Project** %s", s.ActiveTask.Project))
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Join(meta, " · "))
	}

	if s.ActiveTask.Action != "" {
		fmt.Fprintf(&b, "> %s\n\n", s.ActiveTask.Action)
	}

	if len(s.Alternatives) > 0 {
		b.WriteString("## Alternatives\n\n")
		for i, alt := range s.Alternatives {
			fmt.Fprintf(&b, "%d. %s (%.0f%%)\n", i+1, alt.Decision, alt.Confidence*100)
		}
		b.WriteString("\n")
	}

	if len(s.DailyPlan) > 0 {
		b.WriteString("## Daily plan\n\n")
		for _, block := range s.DailyPlan {
			line := fmt.Sprintf("- **%s** %s", block.Time, block.Task)
			if d := block.Duration.String(); d != "" {
				line += fmt.Sprintf(" (%s)", d)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(s.AutonomousTasks) > 0 {
		b.WriteString("## Handled for you\n\n")
		for _, t := range s.AutonomousTasks {
			line := "- " + t.Title
			if t.Status != "" {
				line += fmt.Sprintf(" *%s*", t.Status)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if s.Reasoning != "" {
		fmt.Fprintf(&b, "## Reasoning\n\n%s\n", s.Reasoning)
	}

	return b.String()
}

// renderFocus writes the focus state to w.
func renderFocus(w io.Writer, s focus.State) error {
	out, err := styles.RenderMarkdown(focusMarkdown(s), terminalWidth(w))
	if err != nil {
		return fmt.Errorf("render focus: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}

var weekdays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// renderMonth writes a month grid followed by an agenda of the month's
// entries, at most maxPerDay per day.
func renderMonth(w io.Writer, cells []calendar.DayCell, entriesFor func(time.Time) []calendar.Entry, maxPerDay int) error {
	if len(cells) == 0 {
		return nil
	}

	var month time.Time
	for _, c := range cells {
		if c.IsCurrentMonth {
			month = c.Date
			break
		}
	}

	cell := lipgloss.NewStyle().Width(4).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString(styles.CommandHeaderStyle.Render(month.Format("January 2006")))
	b.WriteString("\n")

	for _, d := range weekdays {
		b.WriteString(cell.Render(styles.WeekdayHeaderStyle.Render(d)))
	}
	b.WriteString("\n")

	for _, week := range calendar.Weeks(cells) {
		for _, c := range week {
			label := fmt.Sprintf("%d", c.Day)
			if c.IsCurrentMonth && len(entriesFor(c.Date)) > 0 {
				label = "•" + label
			}

			style := styles.DayStyle
			switch {
			case c.IsToday:
				style = styles.DayTodayStyle
			case !c.IsCurrentMonth:
				style = styles.DayOutsideStyle
			}
			b.WriteString(cell.Render(style.Render(label)))
		}
		b.WriteString("\n")
	}

	agenda := false
	for _, c := range cells {
		if !c.IsCurrentMonth {
			continue
		}
		entries := entriesFor(c.Date)
		if len(entries) == 0 {
			continue
		}
		if !agenda {
			b.WriteString("\n")
			agenda = true
		}

		shown, more := calendar.Truncate(entries, maxPerDay)
		b.WriteString(styles.CommandHeaderStyle.Render(c.Date.Format("Mon Jan 2")))
		b.WriteString("\n")
		for _, e := range shown {
			b.WriteString("  " + entryLine(e) + "\n")
		}
		if more > 0 {
			b.WriteString("  " + styles.MoreEntriesStyle.Render(fmt.Sprintf("%d more", more)) + "\n")
		}
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}

// entryLine renders one calendar entry on a single line.
func entryLine(e calendar.Entry) string {
	if e.IsGoal() {
		source := lipgloss.NewStyle().Foreground(styles.ColorForString(e.Source)).Render(e.Source)
		return fmt.Sprintf("%s %s %s %s",
			tui.GoalIcon(e.Status),
			source,
			styles.GoalEntryStyle.Render(e.Title),
			styles.MutedStyle.Render("["+e.Status.Label()+"]"),
		)
	}

	when := "all day"
	if !e.AllDay && !e.Start.IsZero() {
		when = e.Start.Format("15:04")
	}
	line := styles.MutedStyle.Render(when) + " " + styles.EventEntryStyle.Render(e.Title)
	if e.Location != "" {
		line += " " + styles.MutedStyle.Render("@ "+e.Location)
	}
	return line
}

// jsonFailure reports err as a JSON error on stderr and exits non-zero
// without printing it again.
func jsonFailure(c *cli.Command, err error) error {
	if werr := iojson.WriteError(c.Root().ErrWriter, err, nil); werr != nil {
		return err
	}
	return cli.Exit("", 1)
}
