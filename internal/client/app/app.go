package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/okhotnikov/surveysync/internal/client/client"
	"github.com/okhotnikov/surveysync/internal/client/config"
	"github.com/okhotnikov/surveysync/internal/client/connectivity"
	"github.com/okhotnikov/surveysync/internal/client/services"
	"github.com/okhotnikov/surveysync/internal/logging"

	_ "modernc.org/sqlite"
)

// TokenEnvVar names the environment variable holding the API bearer token.
// The token is the one setting deliberately kept out of config files.
const TokenEnvVar = "SURVEYSYNC_TOKEN"

// App wires the queue store, REST client, connectivity monitor and sync
// trigger together. Run blocks until the context is cancelled.
type App struct {
	config  *config.Config
	repos   *client.Repositories
	api     client.Client
	monitor *connectivity.Monitor
	trigger *services.SyncTrigger
	log     logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repos, err := client.InitDatabase(ctx, c.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewRESTClient(c.ServerBaseURL,
		&http.Client{Timeout: c.RequestTimeout},
		func(ctx context.Context) (string, error) { return os.Getenv(TokenEnvVar), nil })

	monitor := connectivity.NewMonitor(
		connectivity.ProberFunc(api.Ping), c.OnlineCheckInterval, log)

	engine := services.NewSyncService(api, repos.Queue, monitor, log)
	trigger := services.NewSyncTrigger(engine, monitor, log)

	return &App{config: c, repos: repos, api: api, monitor: monitor, trigger: trigger, log: log}, nil
}

// Run starts the connectivity watcher and the sync trigger, then waits for
// ctx cancellation and shuts both down in order.
func (a *App) Run(ctx context.Context) {
	a.monitor.Start(ctx)
	a.trigger.Start(ctx)

	subs, media, err := a.repos.Queue.PendingCounts(ctx)
	if err != nil {
		a.log.Warn(ctx, "cannot read pending counts", "error", err)
	}
	a.log.Info(ctx, "sync client started",
		"server", a.config.ServerBaseURL, "db", a.config.DatabasePath,
		"pendingSubmissions", subs, "pendingMedia", media)

	<-ctx.Done()

	a.trigger.Stop()
	a.monitor.Stop()
}

// Close releases the database and API client.
func (a *App) Close() error {
	if err := a.api.Close(); err != nil {
		return err
	}
	return a.repos.Close()
}
