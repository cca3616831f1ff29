package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/pkg/iojson"
)

type PreviewCmd struct {
	flags *Flags
	fr    *iojson.FileReader[focus.Payload]

	// flags
	jsonOutput bool
}

// NewPreviewCmd creates a new preview command
func NewPreviewCmd(flags *Flags) *PreviewCmd {
	return &PreviewCmd{
		flags: flags,
		fr:    &iojson.FileReader[focus.Payload]{},
	}
}

// Register adds the preview command to the application
func (cmd *PreviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "preview",
		Usage:     "Render an analysis payload without the backend",
		UsageText: "standup preview [-f payload.json] [--json]",
		Description: `Reads an analysis payload (camelCase or snake_case) from a file or stdin
and prints the focus view it produces. Nothing is sent to the backend.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the focus state as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PreviewCmd) run(_ context.Context, c *cli.Command) error {
	payload, err := cmd.fr.Read(c.Root().Reader)
	if err != nil {
		return err
	}

	state := focus.NewState(payload)
	if cmd.jsonOutput {
		return iojson.WriteIndent(c.Root().Writer, state)
	}
	return renderFocus(c.Root().Writer, state)
}
