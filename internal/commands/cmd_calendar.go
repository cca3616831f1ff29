package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/logging"
	"github.com/colonyops/standup/internal/printer"
	"github.com/colonyops/standup/internal/standup"
	"github.com/colonyops/standup/pkg/iojson"
)

type CalendarCmd struct {
	flags *Flags
	app   *standup.App

	// flags
	month      string
	project    string
	maxPerDay  int
	jsonOutput bool
}

// NewCalendarCmd creates a new calendar command
func NewCalendarCmd(flags *Flags, app *standup.App) *CalendarCmd {
	return &CalendarCmd{flags: flags, app: app}
}

// Register adds the calendar command to the application
func (cmd *CalendarCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "calendar",
		Aliases:   []string{"cal"},
		Usage:     "Show project deadlines and events for a month",
		UsageText: "standup calendar [--month YYYY-MM] [--project pattern] [--json]",
		Description: `Merges project goal deadlines with calendar events into one month view.

--project matches a project id or name, case-insensitively, and accepts
glob patterns such as 'launch*'. Calendar events are always shown.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "month",
				Aliases:     []string{"m"},
				Usage:       "month to show as YYYY-MM (defaults to the current month)",
				Destination: &cmd.month,
			},
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "only show goals of matching projects",
				Destination: &cmd.project,
			},
			&cli.IntFlag{
				Name:        "max",
				Usage:       "entries listed per day before collapsing (defaults to calendar.max_per_day)",
				Destination: &cmd.maxPerDay,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the month's entries as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// calendarDay is the JSON output format for one day of standup calendar --json.
type calendarDay struct {
	Date    string           `json:"date"`
	Entries []calendar.Entry `json:"entries"`
}

type calendarOutput struct {
	Month string        `json:"month"`
	Days  []calendarDay `json:"days"`
}

func (cmd *CalendarCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Config.RequireUser(); err != nil {
		return err
	}
	ctx = logging.WithOperation(logging.WithUser(ctx, cmd.app.Config.UserEmail), "calendar")

	now := time.Now()
	year, month, err := parseMonth(cmd.month, now)
	if err != nil {
		return err
	}

	maxPerDay := cmd.maxPerDay
	if maxPerDay <= 0 {
		maxPerDay = cmd.app.Config.Calendar.MaxPerDay
	}

	agg := cmd.app.Calendar
	agg.SetFilter(cmd.project)

	// A partial load still shows what arrived; the error is returned after.
	loadErr := agg.Reload(ctx)
	if loadErr != nil && len(agg.Entries()) == 0 {
		if cmd.jsonOutput {
			return jsonFailure(c, loadErr)
		}
		return loadErr
	}

	cells := calendar.BuildMonthGrid(year, month, now)

	if cmd.jsonOutput {
		out := calendarOutput{Month: fmt.Sprintf("%04d-%02d", year, month), Days: []calendarDay{}}
		for _, cell := range cells {
			if !cell.IsCurrentMonth {
				continue
			}
			if entries := agg.EntriesForDay(cell.Date); len(entries) > 0 {
				out.Days = append(out.Days, calendarDay{Date: cell.Date.Format(time.DateOnly), Entries: entries})
			}
		}
		if err := iojson.WriteIndent(c.Root().Writer, out); err != nil {
			return err
		}
	} else if err := renderMonth(c.Root().Writer, cells, agg.EntriesForDay, maxPerDay); err != nil {
		return err
	}

	if loadErr != nil {
		printer.Ctx(ctx).Warnf("calendar is incomplete")
	}
	return loadErr
}

// parseMonth parses YYYY-MM, defaulting to the month of now.
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return t.Year(), t.Month(), nil
}
