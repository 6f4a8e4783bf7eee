package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/spectre/internal/config"
	"github.com/genricoloni/spectre/internal/domain"
	"github.com/genricoloni/spectre/internal/engine"
	"github.com/genricoloni/spectre/internal/fetcher"
	"github.com/genricoloni/spectre/internal/monitor"
	"github.com/genricoloni/spectre/internal/notifier"
	"github.com/genricoloni/spectre/internal/overlay"
	"github.com/genricoloni/spectre/internal/platform"
	"github.com/genricoloni/spectre/internal/thumbnail"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the complete dependency graph of the daemon
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		monitor.NewScreenResolution,

		// Overlay stack: one platform, one window class registry per process
		platform.New,
		overlay.NewClassRegistry,
		overlay.NewFader,
		fx.Annotate(notifier.NewDispatcher, fx.As(new(engine.Dispatcher))),

		// Session pipeline
		fx.Annotate(monitor.NewMprisMonitor, fx.As(new(domain.Monitor))),
		fx.Annotate(fetcher.NewHTTPFetcher, fx.As(new(domain.Fetcher))),
		fx.Annotate(thumbnail.NewFitter, fx.As(new(domain.Thumbnailer))),
		engine.NewEngine,
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Interrupted, or once mode has shown everything
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// registerHooks ties the engine to the application lifecycle
func registerHooks(lc fx.Lifecycle, sd fx.Shutdowner, logger *zap.Logger, cfg domain.Config, eng *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Spectre started", zap.String("mode", cfg.GetMode()))
			if err := eng.Start(ctx); err != nil {
				return err
			}
			if cfg.GetMode() == config.ModeOnce {
				go func() {
					<-eng.Done()
					if err := sd.Shutdown(); err != nil {
						logger.Debug("Shutdown already in progress", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			defer func() { _ = logger.Sync() }()
			return eng.Stop(ctx)
		},
	})
}
