package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/core/doctor"
	"github.com/colonyops/standup/internal/core/styles"
	"github.com/colonyops/standup/internal/data/db"
	"github.com/colonyops/standup/internal/standup"
	"github.com/colonyops/standup/pkg/iojson"
)

type DoctorCmd struct {
	flags  *Flags
	app    *standup.App
	format string
	fix    bool
}

func NewDoctorCmd(flags *Flags, app *standup.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your standup setup",
		UsageText:   "standup doctor [options]",
		Description: "Checks the configuration, the local cache and that the backend answers.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "remove expired cache entries and leftover database backups",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	a := cmd.app

	checks := []doctor.Check{
		doctor.NewConfigCheck(a.Config, cmd.flags.ConfigPath),
		doctor.NewCacheCheck(a.Config.DataDir, db.FileName, a.KV),
	}

	if a.Config.UserEmail == "" {
		return checks
	}

	return append(checks, doctor.NewBackendCheck(a.Config.Backend.URL, a.Config.Backend.Timeout,
		doctor.Probe{Label: "projects", Run: func(ctx context.Context) (string, error) {
			projects, err := a.Backend.ListProjects(ctx)
			return fmt.Sprintf("%d projects", len(projects)), err
		}},
		doctor.Probe{Label: "calendar events", Run: func(ctx context.Context) (string, error) {
			events, err := a.Backend.ListEvents(ctx, a.Config.Calendar.Days)
			return fmt.Sprintf("%d events", len(events)), err
		}},
		doctor.Probe{Label: "today's standup", Run: func(ctx context.Context) (string, error) {
			_, ok, err := a.Backend.Today(ctx)
			if !ok {
				return "none yet", err
			}
			return "cached", err
		}},
	))
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, cmd.checks(), cmd.fix)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(c, results)
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	if err := iojson.WriteIndent(c.Root().Writer, out); err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(c *cli.Command, results []doctor.Result) error {
	w := c.Root().Writer
	divider := styles.DividerStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("Standup Doctor"))
	_, _ = fmt.Fprintln(w, divider)

	for _, result := range results {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.CommandStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.SuccessStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.WarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.ErrorStyle.Render("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}
	}

	passed, warned, failed := doctor.Summary(results)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
	)

	if !cmd.fix {
		if fixable := doctor.CountFixable(results); fixable > 0 {
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, styles.MutedStyle.Render(fmt.Sprintf("Run 'standup doctor --autofix' to fix %d issue(s)", fixable)))
		}
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
