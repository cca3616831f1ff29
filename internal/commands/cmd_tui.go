package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/standup"
	"github.com/colonyops/standup/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *standup.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *standup.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the dashboard (default when no command is given)",
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Config.RequireUser(); err != nil {
		return err
	}

	m := tui.New(ctx, tui.Deps{
		Focus:    cmd.app.Focus,
		Calendar: cmd.app.Calendar,
		Bus:      cmd.app.Bus,
		Config:   cmd.app.Config,
		Version:  cmd.app.Build.Version,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
