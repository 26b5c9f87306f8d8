package accrual

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/protection"
	"github.com/pixil98/go-antixray/internal/session"
	"github.com/pixil98/go-antixray/internal/world"
)

type nopBackend struct {
	saves int
}

func (b *nopBackend) Load(context.Context, uuid.UUID) (*ledger.Record, error) { return nil, nil }
func (b *nopBackend) Save(context.Context, uuid.UUID, ledger.Record) error {
	b.saves++
	return nil
}
func (b *nopBackend) LoadLegacy(context.Context, string) (*ledger.Record, error) { return nil, nil }
func (b *nopBackend) SaveLegacy(context.Context, string, ledger.Record) error { return nil }
func (b *nopBackend) ArchiveLegacy(context.Context, string) error { return nil }

type staticPolicy economy.Policy

func (p staticPolicy) Policy() economy.Policy { return economy.Policy(p) }

func pos(w string, x float64) world.Position {
	return world.Position{World: w, X: x, Y: 64, Z: 0}
}

func TestAccrue(t *testing.T) {
	policy := economy.Policy{PointsPerHour: 800, MaxPoints: 1600}

	tests := map[string]struct {
		points    int
		carry     float64
		idle      int
		prev      *world.Position
		cur       world.Position
		inVehicle bool
		expPaid   bool
		expPoints int
		expCarry  float64
		expIdle   int
	}{
		"first tick": {
			points:    0,
			cur:       pos("world", 0),
			expPaid:   true,
			expPoints: 13,
			expCarry:  800.0/60 - 13,
			expIdle:   0,
		},
		"stationary increments idle": {
			points:    0,
			prev:      &world.Position{World: "world", X: 1},
			cur:       world.Position{World: "world", X: 2},
			expPaid:   true,
			expPoints: 13,
			expCarry:  800.0/60 - 13,
			expIdle:   1,
		},
		"exactly three units is still idle": {
			idle:      2,
			prev:      &world.Position{World: "world", X: 0},
			cur:       world.Position{World: "world", X: 3},
			expPaid:   true,
			expPoints: 13,
			expCarry:  800.0/60 - 13,
			expIdle:   3,
		},
		"moving resets idle": {
			idle:      7,
			prev:      &world.Position{World: "world", X: 0},
			cur:       world.Position{World: "world", X: 3.1},
			expPaid:   true,
			expPoints: 13,
			expCarry:  800.0/60 - 13,
			expIdle:   0,
		},
		"changing world resets idle": {
			idle:      7,
			prev:      &world.Position{World: "world", X: 0},
			cur:       world.Position{World: "world_nether", X: 0},
			expPaid:   true,
			expPoints: 13,
			expCarry:  800.0/60 - 13,
			expIdle:   0,
		},
		"vehicle counts as idle": {
			idle:      4,
			points:    50,
			prev:      &world.Position{World: "world", X: 0},
			cur:       world.Position{World: "world", X: 100},
			inVehicle: true,
			expPaid:   false,
			expPoints: 50,
			expIdle:   5,
		},
		"carry rolls over": {
			points:    10,
			carry:     0.9,
			cur:       pos("world", 0),
			expPaid:   true,
			expPoints: 24,
			expCarry:  0.9 + 800.0/60 - 14,
		},
		"clamped to max": {
			points:    1595,
			carry:     0.5,
			cur:       pos("world", 0),
			expPaid:   true,
			expPoints: 1600,
			expCarry:  0,
		},
		"negative balance": {
			points:    -400,
			cur:       pos("world", 0),
			expPaid:   true,
			expPoints: -387,
			expCarry:  -400 + 800.0/60 + 387,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := &ledger.Ledger{
				Points:            tt.points,
				FractionalCarry:   tt.carry,
				InactivityMinutes: tt.idle,
				LastKnownPosition: tt.prev,
			}

			paid := Accrue(l, tt.cur, tt.inVehicle, policy)

			testutil.AssertEqual(t, "paid", paid, tt.expPaid)
			testutil.AssertEqual(t, "points", l.Points, tt.expPoints)
			testutil.AssertEqual(t, "idle", l.InactivityMinutes, tt.expIdle)
			testutil.AssertEqual(t, "last position", *l.LastKnownPosition, tt.cur)
			if diff := l.FractionalCarry - tt.expCarry; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("carry: got %v, expected %v", l.FractionalCarry, tt.expCarry)
			}
			if l.FractionalCarry < 0 || l.FractionalCarry >= 1 {
				t.Errorf("carry out of range: %v", l.FractionalCarry)
			}
		})
	}
}

func TestAccrue_AFKStopsIncomeOnFifthTick(t *testing.T) {
	policy := economy.Policy{PointsPerHour: 600, MaxPoints: 1600}
	l := &ledger.Ledger{}
	here := pos("world", 0)

	var paid []bool
	for range 7 {
		paid = append(paid, Accrue(l, here, false, policy))
	}

	// The first tick has no previous position, so idle counting starts on the second.
	testutil.AssertEqual(t, "paid", paid, []bool{true, true, true, true, true, false, false})
	testutil.AssertEqual(t, "points", l.Points, 50)
	testutil.AssertEqual(t, "idle", l.InactivityMinutes, 6)

	testutil.AssertEqual(t, "moved", Accrue(l, pos("world", 10), false, policy), true)
	testutil.AssertEqual(t, "idle reset", l.InactivityMinutes, 0)
}

func TestScheduler_Tick(t *testing.T) {
	backend := &nopBackend{}
	store := ledger.NewStore(backend, ledger.Seed{StartingPoints: -400, MaxPoints: 1600})
	tracker := session.NewTracker()
	policy := staticPolicy{PointsPerHour: 800, MaxPoints: 1600, IgnoreMaxPointsForBlockRatio: true}

	steve := session.Player{ID: uuid.New(), Name: "Steve", Position: pos("world", 0)}
	tracker.Join(steve)

	s := NewScheduler(tracker, store, policy)
	for i := range 30 {
		// Keep moving so the player never counts as idle.
		tracker.Move(steve.ID, pos("world", float64(i*10)), false)
		err := s.Tick(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	l := store.GetOrCreate(context.Background(), steve.ID, ledger.Hydration{Name: "Steve"})
	// Roughly -400 + 30 * 800/60.
	if balance := float64(l.Points) + l.FractionalCarry; math.Abs(balance) > 1e-6 {
		t.Errorf("balance: got %v, expected 0", balance)
	}
	testutil.AssertEqual(t, "no saves on tick", backend.saves, 0)

	e := economy.NewEngine(policy.Policy(), nil)
	diamond := protection.New(protection.NewIdentity(56), 100, 20)
	d := e.Decide(context.Background(), l, &diamond, world.BlockPos{World: "world", Y: 10})
	testutil.AssertEqual(t, "outcome", d.Outcome, economy.Deny)
	testutil.AssertEqual(t, "eta", d.ETAMinutes, 8)
}

func TestScheduler_TickSeedsFromJoin(t *testing.T) {
	tests := map[string]struct {
		playedBefore bool
		atLeast      int
		below        int
	}{
		"veteran": {
			playedBefore: true,
			atLeast:      1600,
			below:        1700,
		},
		"newcomer": {
			atLeast: -400,
			below:   -300,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := ledger.NewStore(&nopBackend{}, ledger.Seed{StartingPoints: -400, MaxPoints: 1600})
			tracker := session.NewTracker()
			id := uuid.New()
			tracker.Join(session.Player{ID: id, Name: "Steve", Position: pos("world", 0), PlayedBefore: tt.playedBefore})

			s := NewScheduler(tracker, store, staticPolicy{PointsPerHour: 800, MaxPoints: 1600, IgnoreMaxPointsForBlockRatio: true})
			err := s.Tick(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			l, ok := store.Get(id)
			if !ok {
				t.Fatal("expected a cached ledger")
			}
			if l.Points < tt.atLeast || l.Points >= tt.below {
				t.Errorf("points: got %d, expected in [%d, %d)", l.Points, tt.atLeast, tt.below)
			}
		})
	}
}
