// Package standup wires the backend client, local stores and core services
// into one App that commands and the TUI share.
package standup

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/standup/internal/backend"
	"github.com/colonyops/standup/internal/core/calendar"
	"github.com/colonyops/standup/internal/core/config"
	"github.com/colonyops/standup/internal/core/focus"
	"github.com/colonyops/standup/internal/core/notify"
	"github.com/colonyops/standup/internal/data/db"
	"github.com/colonyops/standup/internal/data/stores"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App is the central entry point for all standup operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	DB      *db.DB
	KV      *stores.KVStore
	Bus     *notify.Bus
	Backend *backend.Client

	// Cache is nil when the standup cache is disabled.
	Cache    *focus.CachedSource
	Focus    *focus.Machine
	Calendar *calendar.Aggregator

	Build BuildInfo
}

// NewApp constructs an App from an opened database and loaded config.
func NewApp(cfg *config.Config, database *db.DB, build BuildInfo, log zerolog.Logger) (*App, error) {
	client, err := backend.New(backend.Options{
		BaseURL:   cfg.Backend.URL,
		Token:     cfg.Backend.Token,
		UserEmail: cfg.UserEmail,
		Timeout:   cfg.Backend.Timeout,
		UserAgent: "standup/" + build.Version,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	kvStore := stores.NewKVStore(database)
	bus := notify.NewBus(stores.NewNotifyStore(database))

	app := &App{
		Config:  cfg,
		DB:      database,
		KV:      kvStore,
		Bus:     bus,
		Backend: client,
		Build:   build,
	}

	var source focus.Source = client
	if !cfg.Cache.Disabled {
		app.Cache = focus.NewCachedSource(client, kvStore, cfg.UserEmail, cfg.Cache.TTL, log)
		source = app.Cache
	}

	app.Focus = focus.NewMachine(source, client, bus, log)
	app.Calendar = calendar.NewAggregator(client, client, cfg.Calendar.Days, bus, log)

	return app, nil
}
