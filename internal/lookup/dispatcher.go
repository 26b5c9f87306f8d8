package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/driver"
	"github.com/pixil98/go-antixray/internal/session"
)

const DefaultTimeout = 5 * time.Second

// Result identifies a player found by name.
type Result struct {
	ID    uuid.UUID
	Name  string
	Found bool
	// Online is set when the player was found without asking the host.
	Online bool
}

// Resolver looks up a player that may be offline. It may block.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Result, error)
}

// Online finds players that are currently connected.
type Online interface {
	ByName(name string) (session.Player, bool)
}

// Poster hands work back to the driver loop.
type Poster interface {
	Post(ctx context.Context, task driver.Task) error
}

// Callback receives a lookup result on the driver loop.
type Callback func(ctx context.Context, res Result, err error)

// Dispatcher resolves player names off the driver loop and resumes the caller on it.
type Dispatcher struct {
	online   Online
	resolver Resolver
	poster   Poster
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(online Online, resolver Resolver, poster Poster, opts ...DispatcherOpt) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		online:   online,
		resolver: resolver,
		poster:   poster,
		timeout:  DefaultTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start blocks until ctx is done, then cancels outstanding lookups and waits for them.
func (d *Dispatcher) Start(ctx context.Context) error {
	<-ctx.Done()
	d.cancel()
	d.wg.Wait()
	return nil
}

// Lookup resolves name and calls cb on the driver loop. Online players are answered
// immediately, so Lookup must itself be called from the driver loop.
func (d *Dispatcher) Lookup(ctx context.Context, name string, cb Callback) {
	if p, ok := d.online.ByName(name); ok {
		cb(ctx, Result{ID: p.ID, Name: p.Name, Found: true, Online: true}, nil)
		return
	}

	if err := d.ctx.Err(); err != nil {
		cb(ctx, Result{Name: name}, fmt.Errorf("lookup %q: %w", name, err))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		lctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()

		res, err := d.resolver.Resolve(lctx, name)
		if err != nil {
			err = fmt.Errorf("lookup %q: %w", name, err)
		}

		postErr := d.poster.Post(d.ctx, func(ctx context.Context) {
			cb(ctx, res, err)
		})
		if postErr != nil {
			slog.Warn("dropping lookup result", "name", name, "error", postErr)
		}
	}()
}
