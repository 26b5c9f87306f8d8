package guard

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/messages"
	"github.com/pixil98/go-antixray/internal/protection"
	"github.com/pixil98/go-antixray/internal/session"
	"github.com/pixil98/go-antixray/internal/world"
)

// BreakResult is the outcome of a block break as reported back to the host.
type BreakResult struct {
	Decision economy.Decision
	Points   int
	// Message is shown to the player, set on Deny.
	Message string
}

func (r BreakResult) Allowed() bool {
	return r.Decision.Allowed()
}

// Guard applies the economy to host events. Every method must run on the driver loop.
type Guard struct {
	tracker  *session.Tracker
	store    *ledger.Store
	registry *protection.Registry
	engine   *economy.Engine
	filter   *economy.ExplosionFilter
	messages *messages.Catalog

	exemptCreative atomic.Bool
}

func NewGuard(
	tracker *session.Tracker,
	store *ledger.Store,
	registry *protection.Registry,
	engine *economy.Engine,
	catalog *messages.Catalog,
	exemptCreative bool,
) *Guard {
	g := &Guard{
		tracker:  tracker,
		store:    store,
		registry: registry,
		engine:   engine,
		filter:   economy.NewExplosionFilter(registry),
		messages: catalog,
	}
	g.exemptCreative.Store(exemptCreative)
	return g
}

// SetExemptCreative changes whether creative players skip the economy.
func (g *Guard) SetExemptCreative(exempt bool) {
	g.exemptCreative.Store(exempt)
}

// Join tracks the player and hydrates their ledger for the new session.
func (g *Guard) Join(ctx context.Context, p session.Player) *ledger.Ledger {
	g.tracker.Join(p)

	l := g.store.GetOrCreate(ctx, p.ID, p.Hydration())
	if l.Dirty() {
		g.save(ctx, l)
	}

	slog.InfoContext(ctx, "player joined", "player", p.Name, "id", p.ID, "points", l.Points)
	return l
}

// Quit saves and drops the player's ledger.
func (g *Guard) Quit(ctx context.Context, id uuid.UUID) {
	p, ok := g.tracker.Quit(id)

	if l, cached := g.store.Get(id); cached {
		g.save(ctx, l)
	}
	g.store.Evict(id)

	if ok {
		slog.InfoContext(ctx, "player left", "player", p.Name, "id", id)
	}
}

// Move records a player's position, game mode and bypass flag.
func (g *Guard) Move(ctx context.Context, id uuid.UUID, pos world.Position, inVehicle bool, mode session.GameMode, bypass bool) {
	if !g.tracker.Move(id, pos, inVehicle) {
		slog.DebugContext(ctx, "move for unknown player", "id", id)
		return
	}
	if mode != "" {
		g.tracker.Update(id, mode, bypass)
	}
}

// Place remembers the last block a player placed in a protected world so breaking it
// again is free.
func (g *Guard) Place(ctx context.Context, id uuid.UUID, pos world.BlockPos) {
	p, ok := g.tracker.Get(id)
	if !ok || g.exempt(p) {
		return
	}
	if !g.registry.IsWorldProtected(pos.World) {
		return
	}

	l := g.store.GetOrCreate(ctx, p.ID, p.Hydration())
	placed := pos
	l.LastPlacedPosition = &placed
}

// Break decides whether a player may break a block and charges them if so.
func (g *Guard) Break(ctx context.Context, id uuid.UUID, block protection.Identity, pos world.BlockPos) BreakResult {
	allow := BreakResult{Decision: economy.Decision{Outcome: economy.Allow}}

	p, ok := g.tracker.Get(id)
	if !ok {
		slog.WarnContext(ctx, "break for unknown player, allowing", "id", id, "pos", pos.String())
		return allow
	}
	if g.exempt(p) {
		return allow
	}

	list, ok := g.registry.Protections(pos.World)
	if !ok || len(list) == 0 {
		return allow
	}

	l := g.store.GetOrCreate(ctx, p.ID, p.Hydration())
	allow.Points = l.Points

	if l.LastPlacedPosition != nil && *l.LastPlacedPosition == pos {
		l.LastPlacedPosition = nil
		return allow
	}

	var prot *protection.Protection
	if found, ok := g.registry.Resolve(pos.World, block, pos.Depth()); ok {
		prot = &found
	}

	d := g.engine.Decide(ctx, l, prot, pos)
	res := BreakResult{Decision: d}

	switch d.Outcome {
	case economy.Deny:
		res.Message = g.messages.Render(messages.CantBreakYet, messages.Args{
			"Minutes": d.ETAMinutes,
			"Count":   l.LimitReachedCount,
		})
	case economy.AllowAndCharge:
		g.engine.Charge(l, d)
		slog.DebugContext(ctx, "charged player", "player", p.Name, "cost", d.Amount, "points", l.Points, "pos", pos.String())
	}

	if l.Dirty() {
		g.save(ctx, l)
	}

	res.Points = l.Points
	return res
}

// Explode splits the blocks caught in an explosion into those that may be destroyed
// and those that must be kept.
func (g *Guard) Explode(ctx context.Context, worldName string, items []economy.Item) (destroy []economy.Item, keep []economy.Item) {
	if !g.registry.IsWorldProtected(worldName) {
		return items, nil
	}

	destroy, keep = g.filter.Filter(worldName, items)
	if len(keep) > 0 {
		slog.DebugContext(ctx, "kept protected blocks from explosion", "world", worldName, "kept", len(keep))
	}
	return destroy, keep
}

// Shutdown saves every ledger still held in memory.
func (g *Guard) Shutdown(ctx context.Context) {
	saved := 0
	for _, l := range g.store.Cached() {
		if g.save(ctx, l) {
			saved++
		}
	}
	slog.InfoContext(ctx, "saved ledgers", "count", saved)
}

func (g *Guard) exempt(p session.Player) bool {
	if p.Bypass {
		return true
	}
	return g.exemptCreative.Load() && p.GameMode == session.Creative
}

func (g *Guard) save(ctx context.Context, l *ledger.Ledger) bool {
	err := g.store.Save(ctx, l.PlayerID, l)
	if err != nil {
		slog.ErrorContext(ctx, "saving ledger", "player", l.Name, "id", l.PlayerID, "error", err)
		return false
	}
	return true
}
