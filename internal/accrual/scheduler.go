package accrual

import (
	"context"
	"log/slog"
	"math"

	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/session"
	"github.com/pixil98/go-antixray/internal/world"
)

const (
	// AFKDistanceSquared is the squared distance a player must exceed between ticks to count as active.
	AFKDistanceSquared = 9.0

	// AFKMinutes is the number of idle ticks after which income stops.
	AFKMinutes = 5
)

// Presence lists the players currently online.
type Presence interface {
	Online() []session.Player
}

// PolicySource supplies the current economy tunables.
type PolicySource interface {
	Policy() economy.Policy
}

// Scheduler grants income to active players once per tick. Ledgers are not saved here.
type Scheduler struct {
	presence Presence
	store    *ledger.Store
	policy   PolicySource
}

func NewScheduler(p Presence, s *ledger.Store, ps PolicySource) *Scheduler {
	return &Scheduler{
		presence: p,
		store:    s,
		policy:   ps,
	}
}

// Tick runs one accrual round. It must run on the driver loop.
func (s *Scheduler) Tick(ctx context.Context) error {
	policy := s.policy.Policy()

	for _, p := range s.presence.Online() {
		l := s.store.GetOrCreate(ctx, p.ID, p.Hydration())

		if Accrue(l, p.Position, p.InVehicle, policy) {
			slog.DebugContext(ctx, "granted income", "player", p.Name, "points", l.Points, "carry", l.FractionalCarry)
		} else {
			slog.DebugContext(ctx, "player is afk, skipping income", "player", p.Name, "idle_minutes", l.InactivityMinutes)
		}
	}

	return nil
}

// Accrue applies one minute of income to the ledger of a player at pos. It returns
// false when the player is considered AFK and no income was granted.
func Accrue(l *ledger.Ledger, pos world.Position, inVehicle bool, policy economy.Policy) bool {
	if idle(l.LastKnownPosition, pos, inVehicle) {
		l.InactivityMinutes++
	} else {
		l.InactivityMinutes = 0
	}

	last := pos
	l.LastKnownPosition = &last

	if l.InactivityMinutes >= AFKMinutes {
		return false
	}

	precise := float64(l.Points) + l.FractionalCarry + policy.PointsPerMinute()
	points := math.Floor(precise)
	l.Points = int(points)
	l.FractionalCarry = precise - points

	if l.Points > policy.MaxPoints {
		l.Points = policy.MaxPoints
		l.FractionalCarry = 0
	}

	return true
}

func idle(prev *world.Position, cur world.Position, inVehicle bool) bool {
	if prev == nil || !prev.SameWorld(cur) {
		return false
	}
	return inVehicle || prev.DistanceSquared(cur) <= AFKDistanceSquared
}
