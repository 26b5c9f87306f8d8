package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-antixray/internal/accrual"
	"github.com/pixil98/go-antixray/internal/commands"
	"github.com/pixil98/go-antixray/internal/config"
	"github.com/pixil98/go-antixray/internal/driver"
	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/guard"
	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/messaging"
	"github.com/pixil98/go-antixray/internal/protection"
	"github.com/pixil98/go-antixray/internal/session"
)

func BuildWorkers(raw interface{}) (service.WorkerList, error) {
	cfg, ok := raw.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// The settings document owns the log level, so it can change on reload.
	level := &slog.LevelVar{}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	settings, err := cfg.Settings.loadSettings()
	if err != nil {
		return nil, err
	}
	catalog := cfg.Settings.buildCatalog()

	backend, closeBackend, err := cfg.Storage.buildBackend()
	if err != nil {
		return nil, err
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Economy state
	registry := protection.NewRegistry(protection.NewSnapshot())
	tracker := session.NewTracker()
	store := ledger.NewStore(backend, settings.Seed())
	engine := economy.NewEngine(settings.Policy(), messaging.NewAlertPublisher(natsServer, catalog))
	g := guard.NewGuard(tracker, store, registry, engine, catalog, settings.ExemptCreativeModePlayers)

	reloader := config.NewReloader(
		cfg.Settings.settingsPath(),
		cfg.Settings.messagesPath(),
		registry, engine, store, g, catalog, level,
	)
	reloader.Apply(context.Background(), settings)

	// Setup the driver; ledgers are saved before storage is released
	d := driver.NewDriver(
		[]driver.Ticker{accrual.NewScheduler(tracker, store, engine)},
		driver.WithTickLength(cfg.tickLength()),
		driver.WithStopHook(g.Shutdown),
		driver.WithStopHook(func(ctx context.Context) {
			if err := closeBackend(); err != nil {
				slog.ErrorContext(ctx, "closing storage", "error", err)
			}
		}),
	)

	dispatcher, err := cfg.Lookup.buildDispatcher(tracker, messaging.NewResolver(natsServer), d)
	if err != nil {
		return nil, err
	}

	handler := commands.NewHandler(store, tracker, dispatcher, reloader, catalog)

	gatewayOpts, err := cfg.Nats.gatewayOpts()
	if err != nil {
		return nil, err
	}
	gateway := messaging.NewGateway(natsServer, d, g, handler, gatewayOpts...)

	// Create a worker list
	return service.WorkerList{
		"driver":  d,
		"nats":    natsServer,
		"gateway": gateway,
		"lookup":  dispatcher,
	}, nil
}
