package economy

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/protection"
	"github.com/pixil98/go-antixray/internal/world"
)

// LimitEvent describes a player running out of points for the first time in a session.
type LimitEvent struct {
	PlayerID          uuid.UUID
	PlayerName        string
	LimitReachedCount int
	Identity          protection.Identity
	Position          world.BlockPos
}

// Notifier receives limit events. Delivery is fire and forget.
type Notifier interface {
	LimitReached(ctx context.Context, ev LimitEvent)
}

// Engine decides whether a player may extract a protected resource. It mutates the
// ledger it is given, so calls for the same ledger must be serialized by the caller.
type Engine struct {
	policy   atomic.Pointer[Policy]
	notifier Notifier
}

func NewEngine(p Policy, n Notifier) *Engine {
	e := &Engine{notifier: n}
	e.SetPolicy(p)
	return e
}

// SetPolicy swaps in new tunables. Safe to call while decisions are running.
func (e *Engine) SetPolicy(p Policy) {
	e.policy.Store(&p)
}

func (e *Engine) Policy() Policy {
	return *e.policy.Load()
}

// Decide evaluates an extraction of a resource guarded by prot at pos. A nil
// protection, or one whose ceiling is above pos, is allowed untracked. Deny records
// the first limit hit of the session on the ledger and notifies once.
func (e *Engine) Decide(ctx context.Context, l *ledger.Ledger, prot *protection.Protection, pos world.BlockPos) Decision {
	if prot == nil || !prot.Covers(pos.Depth()) {
		return Decision{Outcome: Allow}
	}

	if prot.Cost() == 0 {
		return Decision{Outcome: Allow, Protection: prot}
	}

	policy := e.Policy()

	// A negative cost is a bonus and is granted even to players in debt.
	if prot.Cost() > 0 && l.Points < prot.Cost() {
		d := Decision{
			Outcome:    Deny,
			ETAMinutes: etaMinutes(prot.Cost()-l.Points, policy.PointsPerHour),
			Protection: prot,
		}
		e.limitReached(ctx, l, prot, pos, policy)
		return d
	}

	return Decision{
		Outcome:    AllowAndCharge,
		Amount:     prot.Cost(),
		Protection: prot,
	}
}

// Charge applies an AllowAndCharge decision to the ledger and marks it dirty.
// Other outcomes leave the ledger alone.
func (e *Engine) Charge(l *ledger.Ledger, d Decision) {
	if d.Outcome != AllowAndCharge {
		return
	}

	policy := e.Policy()

	l.Points -= d.Amount
	if !policy.IgnoreMaxPointsForBlockRatio && l.Points > policy.MaxPoints {
		l.Points = policy.MaxPoints
	}
	l.MarkDirty()
}

func (e *Engine) limitReached(ctx context.Context, l *ledger.Ledger, prot *protection.Protection, pos world.BlockPos, policy Policy) {
	if l.NotifiedLimitThisSession {
		return
	}

	l.NotifiedLimitThisSession = true
	l.LimitReachedCount++
	l.MarkDirty()

	slog.DebugContext(ctx, "player reached limit",
		"player", l.PlayerID,
		"name", l.Name,
		"count", l.LimitReachedCount,
		"pos", pos.String())

	if !policy.NotifyOnLimitReached || e.notifier == nil {
		return
	}

	e.notifier.LimitReached(ctx, LimitEvent{
		PlayerID:          l.PlayerID,
		PlayerName:        l.Name,
		LimitReachedCount: l.LimitReachedCount,
		Identity:          prot.Identity(),
		Position:          pos,
	})
}
