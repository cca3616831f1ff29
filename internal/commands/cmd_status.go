package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/core/logging"
	"github.com/colonyops/standup/internal/printer"
	"github.com/colonyops/standup/internal/standup"
)

type StatusCmd struct {
	flags *Flags
	app   *standup.App
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags, app *standup.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Set the status of today's one thing",
		UsageText: "standup status [preparing|in_progress|complete|blocked]",
		Description: `Records your progress on the task in focus. Without an argument an
interactive picker is shown.`,
		ShellComplete: statusCompleter,
		Action:        cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.app.Config.RequireUser(); err != nil {
		return err
	}
	ctx = logging.WithOperation(logging.WithUser(ctx, cmd.app.Config.UserEmail), "status")

	if err := cmd.app.Focus.Load(ctx); err != nil {
		return err
	}
	state := cmd.app.Focus.State()

	var (
		status focus.Status
		err    error
	)
	if c.Args().Len() > 0 {
		status, err = focus.ParseStatus(c.Args().First())
		if err != nil {
			return err
		}
	} else {
		status, err = pickStatus(state)
		if err != nil {
			return err
		}
	}

	if err := cmd.app.Focus.SetStatus(ctx, status); err != nil {
		return err
	}

	if state.Placeholder {
		p.Warnf("%q is a placeholder; status was not saved", state.ActiveTask.Title)
		return nil
	}
	p.Successf("%s: %s", state.ActiveTask.Title, status.Label())
	return nil
}

func pickStatus(state focus.State) (focus.Status, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("status is required when stdin is not a terminal")
	}

	options := make([]huh.Option[focus.Status], 0, len(focus.Statuses()))
	for _, s := range focus.Statuses() {
		options = append(options, huh.NewOption(s.Label(), s))
	}

	status := state.Status
	err := huh.NewSelect[focus.Status]().
		Title(state.ActiveTask.Title).
		Options(options...).
		Value(&status).
		Run()
	if err != nil {
		return "", fmt.Errorf("pick status: %w", err)
	}
	return status, nil
}
