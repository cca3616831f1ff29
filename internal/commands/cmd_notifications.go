package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/printer"
	"github.com/colonyops/standup/internal/standup"
	"github.com/colonyops/standup/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *standup.App

	// flags
	limit      int
	clear      bool
	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags, app *standup.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notifications",
		Aliases:   []string{"notifs"},
		Usage:     "Show or clear the notification history",
		UsageText: "standup notifications [--limit N] [--clear] [--json]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of notifications to show (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all notifications",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// notificationInfo is the JSON output format for standup notifications --json.
type notificationInfo struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (cmd *NotificationsCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.clear {
		if err := cmd.app.Bus.Clear(ctx); err != nil {
			return fmt.Errorf("clear notifications: %w", err)
		}
		printer.Ctx(ctx).Successf("Notifications cleared")
		return nil
	}

	history, err := cmd.app.Bus.History(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, n := range history {
			info := notificationInfo{
				ID:        n.ID,
				Level:     string(n.Level),
				Source:    n.Source,
				Message:   n.Message,
				CreatedAt: n.CreatedAt,
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(history) == 0 {
		printer.Ctx(ctx).Infof("No notifications")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tLEVEL\tSOURCE\tMESSAGE")
	for _, n := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.CreatedAt.Format(time.DateTime), n.Level, n.Source, n.Message)
	}
	return w.Flush()
}
