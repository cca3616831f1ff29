package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/standup/internal/commands"
	"github.com/colonyops/standup/internal/core/config"
	"github.com/colonyops/standup/internal/core/logging"
	"github.com/colonyops/standup/internal/core/styles"
	"github.com/colonyops/standup/internal/data/db"
	"github.com/colonyops/standup/internal/data/stores"
	"github.com/colonyops/standup/internal/printer"
	"github.com/colonyops/standup/internal/standup"
	"github.com/colonyops/standup/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func buildInfo() standup.BuildInfo {
	b := standup.BuildInfo{Version: version, Commit: commit, Date: date}

	// ldflags aren't set for `go install module@version`.
	if b.Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				b.Version = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					b.Commit = s.Value
				case "vcs.time":
					b.Date = s.Value
				}
			}
		}
	}

	return b
}

func (b buildString) String() string {
	short := b.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s) %s", b.Version, short, b.Date)
}

type buildString standup.BuildInfo

// standalone lists commands that run without the App.
var standalone = map[string]bool{
	"config":       true,
	"preview":      true,
	"mock-backend": true,
}

// openDatabase opens the cache database, moving a corrupted file aside once.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	backup, recErr := stores.RecoverFromCorruption(cfg.DataDir)
	if recErr != nil {
		return nil, fmt.Errorf("%w (recovery failed: %w)", err, recErr)
	}
	log.Warn().Err(err).Str("backup", backup).Msg("cache database was corrupted, starting fresh")

	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		standupApp  = &standup.App{}
		database    *db.DB
		sweepCancel context.CancelFunc
		build       = buildInfo()
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "standup",
		Usage:     "Your daily focus and project calendar",
		UsageText: "standup [global options] command [command options]",
		Description: `Standup shows the one task to work on right now, the alternatives the
assistant considered, and a month calendar of project goal deadlines merged
with your calendar events.

Run 'standup' with no arguments to open the dashboard.
Run 'standup focus' to print today's focus.`,
		Version:               buildString(build).String(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("STANDUP_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/standup.log)",
				Sources:     cli.EnvVars("STANDUP_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("STANDUP_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("STANDUP_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "email of the signed-in user (overrides user_email)",
				Sources:     cli.EnvVars("STANDUP_USER"),
				Destination: &flags.UserEmail,
			},
			&cli.StringFlag{
				Name:        "backend-url",
				Usage:       "assistant backend base URL (overrides backend.url)",
				Sources:     cli.EnvVars("STANDUP_BACKEND_URL"),
				Destination: &flags.BackendURL,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := os.MkdirAll(flags.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			// Always log to a file; use explicit path or default to <datadir>/standup.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "standup.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(c.Root().ErrWriter))

			// These read config on their own and must work when it is invalid
			// or the backend is unreachable.
			if standalone[c.Args().First()] {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir, flags.Overrides())
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Validation ensures the theme name is known.
			styles.UseTheme(cfg.TUI.Theme)

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			a, err := standup.NewApp(cfg, database, build, logging.Component("backend"))
			if err != nil {
				return ctx, err
			}
			// Commands already hold a pointer to the App.
			*standupApp = *a

			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			go standup.Sweep(sweepCtx, standupApp.KV, cfg.Cache.SweepInterval, logging.Component("sweep"))

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, standupApp)

	app = commands.NewFocusCmd(flags, standupApp).Register(app)
	app = commands.NewStatusCmd(flags, standupApp).Register(app)
	app = commands.NewCalendarCmd(flags, standupApp).Register(app)
	app = commands.NewGoalCmd(flags, standupApp).Register(app)
	app = commands.NewPreviewCmd(flags).Register(app)
	app = commands.NewNotificationsCmd(flags, standupApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags, standupApp).Register(app)
	app = commands.NewMockBackendCmd(flags).Register(app)
	app = tuiCmd.Register(app)

	// Dashboard is the default action when no subcommand is provided.
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'standup --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	// Exit codes are handled below so the After hook always runs first.
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		exitCode = 1
		var ec cli.ExitCoder
		if errors.As(runErr, &ec) {
			exitCode = ec.ExitCode()
		}
		if msg := runErr.Error(); msg != "" {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, msg)
		}
	}

	os.Exit(exitCode)
}
