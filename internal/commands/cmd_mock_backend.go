package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/backend/mockserver"
	"github.com/colonyops/standup/internal/printer"
)

type MockBackendCmd struct {
	flags *Flags

	// flags
	addr   string
	token  string
	noSeed bool
}

// NewMockBackendCmd creates a new mock-backend command
func NewMockBackendCmd(flags *Flags) *MockBackendCmd {
	return &MockBackendCmd{flags: flags}
}

// Register adds the mock-backend command to the application
func (cmd *MockBackendCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "mock-backend",
		Usage:     "Serve an in-memory assistant backend",
		UsageText: "standup mock-backend [--addr :8089] [--token TOKEN] [--no-seed]",
		Description: `Starts a local backend implementing every route the client uses, seeded
with a demo analysis, projects and events for any user. Point the client
at it with --backend-url http://localhost:8089. State is lost on exit.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       ":8089",
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "require this bearer token",
				Sources:     cli.EnvVars("STANDUP_MOCK_TOKEN"),
				Destination: &cmd.token,
			},
			&cli.BoolFlag{
				Name:        "no-seed",
				Usage:       "start with no demo data",
				Destination: &cmd.noSeed,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MockBackendCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mockserver.New(mockserver.Options{
		Token: cmd.token,
		Seed:  !cmd.noSeed,
	}, log.With().Str("component", "mock-backend").Logger())

	l := mockserver.NewListener(srv, cmd.addr)
	if err := l.Start(ctx); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("mock backend listening on %s", l.URL())
	log.Info().Str("addr", l.Addr()).Msg("mock backend started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown mock backend: %w", err)
	}
	return nil
}
