package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/core/focus"
)

// statusCompleter suggests focus status names for the first positional
// argument. When the last typed argument starts with "-", it falls back to
// the default flag completion behavior.
func statusCompleter(ctx context.Context, cmd *cli.Command) {
	if args := cmd.Args(); args.Present() {
		last := args.Slice()[args.Len()-1]
		if len(last) > 0 && last[0] == '-' {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}
	}

	w := cmd.Root().Writer
	for _, s := range focus.Statuses() {
		_, _ = fmt.Fprintln(w, s)
	}
}
