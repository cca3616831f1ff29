package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/core/logging"
	"github.com/colonyops/standup/internal/standup"
	"github.com/colonyops/standup/pkg/iojson"
)

type FocusCmd struct {
	flags *Flags
	app   *standup.App

	// flags
	jsonOutput bool
	refresh    bool
}

// NewFocusCmd creates a new focus command
func NewFocusCmd(flags *Flags, app *standup.App) *FocusCmd {
	return &FocusCmd{flags: flags, app: app}
}

// Register adds the focus command to the application
func (cmd *FocusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "focus",
		Usage:     "Show today's one thing",
		UsageText: "standup focus [--refresh] [--json]",
		Description: `Prints the task the assistant picked for today, the alternatives you can
swap in, the daily plan and the reasoning behind it.

Today's analysis is reused when one exists. Use --refresh to ask the
assistant for a new one.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the focus state as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "refresh",
				Aliases:     []string{"r"},
				Usage:       "run a fresh analysis instead of reusing today's",
				Destination: &cmd.refresh,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FocusCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Config.RequireUser(); err != nil {
		return err
	}
	ctx = logging.WithOperation(logging.WithUser(ctx, cmd.app.Config.UserEmail), "focus")

	load := cmd.app.Focus.Load
	if cmd.refresh {
		load = cmd.app.Focus.Refresh
	}
	if err := load(ctx); err != nil {
		if cmd.jsonOutput {
			return jsonFailure(c, err)
		}
		return err
	}

	state := cmd.app.Focus.State()
	if cmd.jsonOutput {
		return iojson.WriteIndent(c.Root().Writer, state)
	}
	return renderFocus(c.Root().Writer, state)
}
