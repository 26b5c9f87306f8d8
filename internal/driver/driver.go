package driver

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultTickLength = time.Minute
	DefaultQueueSize  = 256
)

// Ticker is run once per tick on the driver loop.
type Ticker interface {
	Tick(context.Context) error
}

// Task is a unit of work executed on the driver loop.
type Task func(context.Context)

// StopHook runs on the driver loop after the context is cancelled, before Start returns.
type StopHook func(context.Context)

// Driver owns the single goroutine allowed to mutate ledgers. Tickers, posted tasks
// and stop hooks all run on it, one at a time.
type Driver struct {
	tickLength time.Duration
	tickers    []Ticker
	stopHooks  []StopHook

	tasks    chan Task
	stopping chan struct{}
	done     chan struct{}

	// mu guards closed. Post holds it for reading while sending so that stop can
	// wait out every in-flight send before draining the queue.
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func NewDriver(tickers []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		tickers:    tickers,
		tasks:      make(chan Task, DefaultQueueSize),
		stopping:   make(chan struct{}),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	defer close(d.done)

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.stop()
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				d.stop()
				return err
			}
		case task := <-d.tasks:
			task(ctx)
		}
	}
}

// Tick runs every ticker once.
func (d *Driver) Tick(ctx context.Context) error {
	for _, t := range d.tickers {
		err := t.Tick(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// Post queues a task without waiting for it to run. A task accepted by Post always
// runs, either on the loop or while the queue is drained at shutdown.
func (d *Driver) Post(ctx context.Context, task Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrNotRunning
	}

	select {
	case <-d.stopping:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	case d.tasks <- task:
		return nil
	}
}

// Do queues a task and waits for it to finish.
func (d *Driver) Do(ctx context.Context, task Task) error {
	finished := make(chan struct{})
	err := d.Post(ctx, func(ctx context.Context) {
		defer close(finished)
		task(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-d.done:
		// The loop may have run the task just before exiting.
		select {
		case <-finished:
			return nil
		default:
			return ErrNotRunning
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Start has returned.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

func (d *Driver) stop() {
	d.once.Do(func() { close(d.stopping) })

	// Wait for senders to leave Post. Nothing can be queued after this.
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	// Stop hooks get a fresh context since the run context is already cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d.drain(ctx)

	for _, h := range d.stopHooks {
		h(ctx)
	}
	slog.Info("driver stopped")
}

// drain runs tasks that were queued before shutdown.
func (d *Driver) drain(ctx context.Context) {
	for {
		select {
		case task := <-d.tasks:
			task(ctx)
		default:
			return
		}
	}
}
