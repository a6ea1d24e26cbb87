package confloader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/0823nobuo-png/System-Validator/internal/infra/confloader"

// DefaultDebounce is how long Reloader.Watch waits for a burst of file
// events to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Snapshot is the outcome of one load.
type Snapshot struct {
	BaseDir    string
	Generation uint64
	LoadedAt   time.Time
	Config     Mapping
	Err        error
}

// OK reports whether the load succeeded.
func (s Snapshot) OK() bool {
	return s.Err == nil && s.Config != nil
}

// Reloader keeps the latest load result for one directory.
type Reloader struct {
	loader   *Loader
	baseDir  string
	debounce time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer

	// reloadMu serializes loads so results are stored in load order.
	reloadMu sync.Mutex

	mu        sync.RWMutex
	current   Snapshot
	listeners []func(Snapshot)
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithDebounce sets the file event debounce interval.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// WithReloaderLogger sets the logger.
func WithReloaderLogger(logger *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		r.logger = logger
	}
}

// WithTracerProvider sets where reload spans go. The default is the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) ReloaderOption {
	return func(r *Reloader) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// NewReloader creates a Reloader. Nothing is loaded until Reload.
func NewReloader(loader *Loader, baseDir string, opts ...ReloaderOption) *Reloader {
	r := &Reloader{
		loader:   loader,
		baseDir:  baseDir,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		current:  Snapshot{BaseDir: baseDir},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseDir returns the directory being loaded.
func (r *Reloader) BaseDir() string {
	return r.baseDir
}

// Reload loads the directory now, stores the result and notifies
// listeners. A failed load replaces the previous snapshot. A load cut
// short by ctx is not stored: the previous snapshot stays current and
// is returned with the context error in Err.
func (r *Reloader) Reload(ctx context.Context) Snapshot {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	ctx, span := r.tracer.Start(ctx, "config.reload",
		trace.WithAttributes(attribute.String("config.base_dir", r.baseDir)),
	)
	defer span.End()

	m, err := r.loader.Load(ctx, r.baseDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() != nil {
			snap := r.Snapshot()
			snap.Err = err
			return snap
		}
	}

	r.mu.Lock()
	snap := Snapshot{
		BaseDir:    r.baseDir,
		Generation: r.current.Generation + 1,
		LoadedAt:   time.Now(),
		Config:     m,
		Err:        err,
	}
	r.current = snap
	span.SetAttributes(
		attribute.Int64("config.generation", int64(snap.Generation)),
		attribute.Int("config.keys", len(m)),
	)
	listeners := make([]func(Snapshot), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// Snapshot returns the latest load result.
func (r *Reloader) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// OnReload registers fn to run after every Reload.
func (r *Reloader) OnReload(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Watch reloads whenever either config file changes, until ctx is done.
// It returns an error only if the watcher cannot be set up.
func (r *Reloader) Watch(ctx context.Context) error {
	w, err := NewWatcher(
		WithWatcherLogger(r.logger),
		WithWatchFiles(EnvFileName, DocumentFileName),
	)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Watch(r.baseDir); err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	w.OnChange(func(string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	w.StartAsync()

	// Stopped timers never deliver (go1.23 timer semantics), so Reset
	// alone restarts the debounce window.
	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			timer.Reset(r.debounce)
		case <-timer.C:
			snap := r.Reload(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if snap.Err != nil {
				r.logger.Warn("configuration reload failed",
					"base_dir", r.baseDir,
					"generation", snap.Generation,
					"error", snap.Err,
				)
				continue
			}
			r.logger.Info("configuration reloaded",
				"base_dir", r.baseDir,
				"generation", snap.Generation,
				"keys", len(snap.Config),
			)
		}
	}
}
