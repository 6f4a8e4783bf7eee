// Package notifier runs one toast per display record on a bounded set of
// OS threads and joins them on shutdown.
package notifier

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genricoloni/spectre/internal/domain"
	"github.com/genricoloni/spectre/internal/overlay"
	"github.com/genricoloni/spectre/internal/platform"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Dispatch after Shutdown
var ErrClosed = errors.New("dispatcher is shut down")

const defaultDrainTimeout = time.Second

// Toast is a handle on one dispatched notification
type Toast struct {
	title  string
	record domain.DisplayRecord
	done   chan struct{}

	mu       sync.Mutex
	window   *overlay.Window
	closeReq bool
	err      error
}

func newToast(rec domain.DisplayRecord) *Toast {
	return &Toast{
		title:  rec.Title,
		record: rec,
		done:   make(chan struct{}),
	}
}

// Title returns the toast's window title
func (t *Toast) Title() string {
	return t.title
}

// Done is closed once the toast's window is gone
func (t *Toast) Done() <-chan struct{} {
	return t.done
}

// Err returns why the toast failed, once Done is closed
func (t *Toast) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close asks the toast's window to close. Safe from any goroutine. Closing
// a toast whose window does not exist yet closes it as soon as it does.
func (t *Toast) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	default:
	}

	if t.window == nil {
		t.closeReq = true
		return nil
	}
	if err := t.window.MessageSelf(platform.MsgClose); err != nil && t.window.Alive() {
		return err
	}
	return nil
}

func (t *Toast) attach(w *overlay.Window) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.window = w
	if t.closeReq {
		_ = w.MessageSelf(platform.MsgClose)
	}
}

func (t *Toast) finish(err error) {
	t.mu.Lock()
	t.err = err
	t.window = nil
	t.mu.Unlock()
	close(t.done)
}

// Dispatcher shows toasts, at most cfg.MaxToasts() at a time
type Dispatcher struct {
	logger   *zap.Logger
	cfg      domain.Config
	registry *overlay.ClassRegistry
	fader    *overlay.Fader

	group    *errgroup.Group
	disabled atomic.Bool
	drain    time.Duration

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup // Dispatch calls between the closed check and group.Go
	live    map[*Toast]struct{}
	errs    error
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithDrainTimeout bounds how long Shutdown waits for toasts it closed
func WithDrainTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.drain = timeout
	}
}

// NewDispatcher creates a dispatcher sharing reg's window class
func NewDispatcher(logger *zap.Logger, cfg domain.Config, reg *overlay.ClassRegistry, fader *overlay.Fader, opts ...Option) *Dispatcher {
	g := &errgroup.Group{}
	g.SetLimit(cfg.MaxToasts())

	d := &Dispatcher{
		logger:   logger.Named("notifier"),
		cfg:      cfg,
		registry: reg,
		fader:    fader,
		group:    g,
		drain:    defaultDrainTimeout,
		live:     make(map[*Toast]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts a toast for rec. It blocks while the maximum number of
// toasts is showing. Once the window class failed to register every call
// returns that error.
func (d *Dispatcher) Dispatch(rec domain.DisplayRecord) (*Toast, error) {
	if d.disabled.Load() {
		_, err := d.registry.Instance()
		return nil, err
	}

	t := newToast(rec)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	d.live[t] = struct{}{}
	d.pending.Add(1)
	d.mu.Unlock()
	defer d.pending.Done()

	d.logger.Debug("Dispatching toast", zap.String("title", t.title))
	d.group.Go(func() error {
		d.run(t)
		return nil
	})
	return t, nil
}

func (d *Dispatcher) run(t *Toast) {
	// The window belongs to this thread; the thread is discarded with the goroutine
	runtime.LockOSThread()

	logger := d.logger.With(zap.String("title", t.title))
	err := d.show(t, logger)

	d.mu.Lock()
	delete(d.live, t)
	if err != nil {
		d.errs = multierr.Append(d.errs, err)
	}
	d.mu.Unlock()

	t.finish(err)
}

func (d *Dispatcher) show(t *Toast, logger *zap.Logger) error {
	w, err := overlay.New(d.registry, t.title, t.record, overlay.WithLogger(logger))
	if err != nil {
		if errors.Is(err, overlay.ErrClassRegistrationFailed) {
			if d.disabled.CompareAndSwap(false, true) {
				logger.Error("Window class unavailable, disabling toasts", zap.Error(err))
			}
		} else {
			logger.Warn("Toast skipped", zap.Error(err))
		}
		return err
	}
	t.attach(w)

	if err := w.Init(); err != nil {
		logger.Warn("Toast failed to show", zap.Error(err))
		w.Destruct()
		return err
	}

	if err := d.fader.FadeOut(w, d.cfg.FadeDuration()); err != nil {
		logger.Warn("Toast failed to fade", zap.Error(err))
		w.Destruct()
		return err
	}

	logger.Debug("Toast finished")
	return nil
}

// Wait blocks until every dispatched toast has finished. It must not race
// with Dispatch; use Shutdown for that.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
	_ = d.group.Wait()
}

// Err returns every toast failure so far
func (d *Dispatcher) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errs
}

// Live returns the number of toasts not yet finished
func (d *Dispatcher) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Shutdown stops accepting toasts and waits for running ones until ctx
// ends. On timeout the remaining toasts are closed and given the drain
// timeout to finish; the result then includes ctx.Err().
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return d.Err()
	case <-ctx.Done():
	}

	d.mu.Lock()
	toasts := make([]*Toast, 0, len(d.live))
	for t := range d.live {
		toasts = append(toasts, t)
	}
	d.mu.Unlock()

	d.logger.Warn("Shutdown timed out, closing remaining toasts", zap.Int("count", len(toasts)))
	for _, t := range toasts {
		if err := t.Close(); err != nil {
			d.logger.Warn("Failed to close toast", zap.String("title", t.title), zap.Error(err))
		}
	}

	// A closed toast ends within one pump cycle
	drain := time.NewTimer(d.drain)
	defer drain.Stop()
	select {
	case <-finished:
	case <-drain.C:
		d.logger.Error("Toasts still running after shutdown", zap.Int("count", d.Live()))
	}
	return multierr.Append(ctx.Err(), d.Err())
}
