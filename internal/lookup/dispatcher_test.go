package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-antixray/internal/driver"
	"github.com/pixil98/go-antixray/internal/session"
)

type resolverFunc func(ctx context.Context, name string) (Result, error)

func (f resolverFunc) Resolve(ctx context.Context, name string) (Result, error) {
	return f(ctx, name)
}

// chanPoster runs posted tasks when the test drains it, standing in for the driver loop.
type chanPoster chan driver.Task

func (p chanPoster) Post(ctx context.Context, task driver.Task) error {
	select {
	case p <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type outcome struct {
	res Result
	err error
}

func TestDispatcher_OnlineFastPath(t *testing.T) {
	tracker := session.NewTracker()
	id := uuid.New()
	tracker.Join(session.Player{ID: id, Name: "Steve"})

	called := false
	d := NewDispatcher(tracker, resolverFunc(func(context.Context, string) (Result, error) {
		called = true
		return Result{}, nil
	}), make(chanPoster))

	var got outcome
	d.Lookup(context.Background(), "steve", func(_ context.Context, res Result, err error) {
		got = outcome{res: res, err: err}
	})

	testutil.AssertEqual(t, "found", got.res.Found, true)
	testutil.AssertEqual(t, "online", got.res.Online, true)
	testutil.AssertEqual(t, "id", got.res.ID, id)
	testutil.AssertEqual(t, "resolver called", called, false)
}

func TestDispatcher_Resolves(t *testing.T) {
	id := uuid.New()
	tests := map[string]struct {
		resolver resolverFunc
		expFound bool
		expErr   string
	}{
		"found offline": {
			resolver: func(_ context.Context, name string) (Result, error) {
				return Result{ID: id, Name: name, Found: true}, nil
			},
			expFound: true,
		},
		"not found": {
			resolver: func(_ context.Context, name string) (Result, error) {
				return Result{Name: name}, nil
			},
		},
		"host error": {
			resolver: func(context.Context, string) (Result, error) {
				return Result{}, errors.New("no responders")
			},
			expErr: "no responders",
		},
		"timeout": {
			resolver: func(ctx context.Context, _ string) (Result, error) {
				<-ctx.Done()
				return Result{}, ctx.Err()
			},
			expErr: "deadline exceeded",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			poster := make(chanPoster, 1)
			d := NewDispatcher(session.NewTracker(), tt.resolver, poster, WithTimeout(20*time.Millisecond))

			results := make(chan outcome, 1)
			d.Lookup(context.Background(), "Notch", func(_ context.Context, res Result, err error) {
				results <- outcome{res: res, err: err}
			})

			select {
			case task := <-poster:
				task(context.Background())
			case <-time.After(2 * time.Second):
				t.Fatal("lookup never completed")
			}

			got := <-results
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, got.err, tt.expErr)
				return
			}
			if got.err != nil {
				t.Fatalf("unexpected error: %v", got.err)
			}
			testutil.AssertEqual(t, "found", got.res.Found, tt.expFound)
			testutil.AssertEqual(t, "online", got.res.Online, false)
		})
	}
}

func TestDispatcher_StopCancelsLookups(t *testing.T) {
	started := make(chan struct{})
	d := NewDispatcher(session.NewTracker(), resolverFunc(func(ctx context.Context, _ string) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	}), make(chanPoster), WithTimeout(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- d.Start(ctx) }()

	d.Lookup(context.Background(), "Notch", func(context.Context, Result, error) {
		t.Error("callback should not run after stop")
	})
	<-started
	cancel()

	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	var got outcome
	d.Lookup(context.Background(), "Herobrine", func(_ context.Context, res Result, err error) {
		got = outcome{res: res, err: err}
	})
	testutil.AssertErrorContains(t, got.err, "canceled")
}
