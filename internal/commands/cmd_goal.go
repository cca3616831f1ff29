package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/logging"
	"github.com/colonyops/standup/internal/printer"
	"github.com/colonyops/standup/internal/standup"
)

type GoalCmd struct {
	flags *Flags
	app   *standup.App

	// flags
	project string
	goal    string
	status  string
}

// NewGoalCmd creates a new goal command
func NewGoalCmd(flags *Flags, app *standup.App) *GoalCmd {
	return &GoalCmd{flags: flags, app: app}
}

// Register adds the goal command to the application
func (cmd *GoalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "goal",
		Usage:     "Update the status of a project goal",
		UsageText: "standup goal --project ID --goal TEXT [--status STATUS]",
		Description: `Sets the status of a goal that has a deadline. The project is matched by
id or name. Without --status the goal moves to the next status
(not_started, in_progress, completed, blocked).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "project id or name",
				Required:    true,
				Destination: &cmd.project,
			},
			&cli.StringFlag{
				Name:        "goal",
				Aliases:     []string{"g"},
				Usage:       "goal text",
				Required:    true,
				Destination: &cmd.goal,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "new status (not_started, in_progress, completed, blocked)",
				Destination: &cmd.status,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GoalCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Config.RequireUser(); err != nil {
		return err
	}
	ctx = logging.WithOperation(logging.WithUser(ctx, cmd.app.Config.UserEmail), "goal")

	agg := cmd.app.Calendar
	if err := agg.Reload(ctx); err != nil && len(agg.Projects()) == 0 {
		return err
	}

	entry, err := findGoal(agg.Entries(), cmd.project, cmd.goal)
	if err != nil {
		return err
	}

	status := entry.Status.Next()
	if cmd.status != "" {
		status, err = calendar.ParseGoalStatus(cmd.status)
		if err != nil {
			return err
		}
	}

	if err := agg.UpdateGoalStatus(ctx, entry, status); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("%s: %s → %s", entry.Source, entry.Title, status.Label())
	return nil
}

// findGoal returns the goal entry of project (id or name) whose text is goal.
func findGoal(entries []calendar.Entry, project, goal string) (calendar.Entry, error) {
	for _, e := range entries {
		if !e.IsGoal() {
			continue
		}
		if e.ProjectID != project && !strings.EqualFold(e.ProjectName, project) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(e.Title), strings.TrimSpace(goal)) {
			return e, nil
		}
	}
	return calendar.Entry{}, fmt.Errorf("goal %q of project %q: %w (only goals with a deadline can be updated)", goal, project, calendar.ErrGoalNotFound)
}
