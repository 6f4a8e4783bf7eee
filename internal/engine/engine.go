package engine

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/genricoloni/spectre/internal/config"
	"github.com/genricoloni/spectre/internal/domain"
	"github.com/genricoloni/spectre/internal/notifier"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Dispatcher shows display records as toasts
type Dispatcher interface {
	Dispatch(rec domain.DisplayRecord) (*notifier.Toast, error)
	Wait()
	Shutdown(ctx context.Context) error
}

// Engine turns media sessions into toasts.
// In once mode it shows every session found at startup and then reports
// Done. In watch mode it shows each track change until stopped.
type Engine struct {
	logger     *zap.Logger
	cfg        domain.Config
	monitor    domain.Monitor
	fetcher    domain.Fetcher
	thumbs     domain.Thumbnailer
	dispatcher Dispatcher

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
	lastKey string
}

// NewEngine creates a new orchestration engine
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	mon domain.Monitor,
	fetch domain.Fetcher,
	thumbs domain.Thumbnailer,
	disp Dispatcher,
) *Engine {
	return &Engine{
		logger:     logger.Named("engine"),
		cfg:        cfg,
		monitor:    mon,
		fetcher:    fetch,
		thumbs:     thumbs,
		dispatcher: disp,
		done:       make(chan struct{}),
	}
}

// Start launches the engine in the background and returns immediately.
// ctx only bounds startup.
func (e *Engine) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	mode := e.cfg.GetMode()
	e.logger.Info("Engine starting", zap.String("mode", mode))

	if mode == config.ModeWatch {
		e.wg.Add(2)
		go func() {
			defer e.wg.Done()
			if err := e.monitor.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				e.logger.Error("Monitor stopped with error", zap.Error(err))
			}
		}()
		go e.runLoop(runCtx)
		return nil
	}

	e.wg.Add(1)
	go e.runOnce(runCtx)
	return nil
}

// Done is closed once the engine has nothing left to show
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) runOnce(ctx context.Context) {
	defer e.wg.Done()
	defer close(e.done)

	sessions, err := e.monitor.Snapshot(ctx)
	if err != nil {
		e.logger.Error("Failed to list media sessions", zap.Error(err))
	}
	e.logger.Info("Media sessions found", zap.Int("count", len(sessions)))

	for _, s := range sessions {
		if ctx.Err() != nil {
			return
		}
		e.show(ctx, s)
	}
	e.dispatcher.Wait()
}

// runLoop shows a toast once track changes have been quiet for the
// debounce period, so that skipping through tracks shows only the last one.
func (e *Engine) runLoop(ctx context.Context) {
	defer e.wg.Done()
	defer close(e.done)

	events := e.monitor.Events()
	debounce := e.cfg.Debounce()
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	var pending *domain.MediaSession

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case s, ok := <-events:
			if !ok {
				e.logger.Info("Monitor events channel closed")
				return
			}
			e.logger.Debug("Event received, debouncing",
				zap.String("player", s.Player),
				zap.String("title", s.Title))
			pending = &s
			timer.Reset(debounce)

		case <-timer.C:
			if pending != nil {
				e.handle(ctx, *pending)
				pending = nil
			}
		}
	}
}

func (e *Engine) handle(ctx context.Context, s domain.MediaSession) {
	if s.Status != domain.StatusPlaying {
		e.logger.Debug("Playback not running, no toast", zap.String("status", string(s.Status)))
		return
	}

	key := sessionKey(s)
	if key == e.lastKey {
		e.logger.Debug("Track already shown", zap.String("title", s.Title))
		return
	}
	e.lastKey = key
	e.show(ctx, s)
}

func sessionKey(s domain.MediaSession) string {
	return s.Player + "\x00" + s.Title + "\x00" + s.Artist + "\x00" + s.Album
}

func (e *Engine) show(ctx context.Context, s domain.MediaSession) {
	rec := domain.NewDisplayRecord(s, e.thumbnail(ctx, s))

	fields := make([]zap.Field, 0, 8)
	fields = append(fields, zap.String("player", s.Player))
	for _, p := range rec.Properties() {
		fields = append(fields, zap.String(p.Key, p.Value))
	}
	e.logger.Info("Showing media session", fields...)

	if _, err := e.dispatcher.Dispatch(rec); err != nil {
		e.logger.Warn("Toast not shown", zap.String("title", rec.Title), zap.Error(err))
	}
}

func (e *Engine) thumbnail(ctx context.Context, s domain.MediaSession) *image.NRGBA {
	if s.ArtUrl == "" {
		e.logger.Debug("No artwork URL", zap.String("title", s.Title))
		return e.thumbs.Placeholder()
	}

	data, err := e.fetcher.Fetch(ctx, s.ArtUrl)
	if err != nil {
		e.logger.Warn("Failed to fetch artwork", zap.String("url", s.ArtUrl), zap.Error(err))
		return e.thumbs.Placeholder()
	}
	return e.thumbs.Fit(data)
}

// Stop ends the engine, giving running toasts the configured shutdown
// timeout to finish.
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping")
	if e.cancel != nil {
		e.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, e.cfg.ShutdownTimeout())
	defer cancel()

	// Toast failures were logged as they happened; only a timeout fails the stop
	if err := e.dispatcher.Shutdown(shutdownCtx); err != nil {
		e.logger.Warn("Toasts did not shut down cleanly", zap.Error(err))
	}

	var errs error
	if err := e.monitor.Stop(shutdownCtx); err != nil {
		e.logger.Warn("Failed to stop monitor", zap.Error(err))
		errs = multierr.Append(errs, err)
	}

	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-shutdownCtx.Done():
		e.logger.Warn("Engine goroutines still running")
	}

	return multierr.Append(errs, shutdownCtx.Err())
}
