package session

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/world"
)

type GameMode string

const (
	Survival  GameMode = "survival"
	Creative  GameMode = "creative"
	Adventure GameMode = "adventure"
	Spectator GameMode = "spectator"
)

// Player is the host's view of one online player.
type Player struct {
	ID        uuid.UUID
	Name      string
	Position  world.Position
	InVehicle bool
	GameMode  GameMode

	// Bypass is set when the host grants the player the bypass capability.
	Bypass bool

	// PlayedBefore is the host's answer at join time. It decides the seed of a
	// ledger created for this player at any point during the session.
	PlayedBefore bool
}

// Hydration describes how to seed the player's ledger if none exists.
func (p Player) Hydration() ledger.Hydration {
	return ledger.Hydration{Name: p.Name, PlayedBefore: p.PlayedBefore}
}

// Tracker records which players are online and where they are.
type Tracker struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*Player
	names   map[string]uuid.UUID
}

func NewTracker() *Tracker {
	return &Tracker{
		players: map[uuid.UUID]*Player{},
		names:   map[string]uuid.UUID{},
	}
}

// Join adds or refreshes an online player.
func (t *Tracker) Join(p Player) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.players[p.ID]; ok && t.names[nameKey(old.Name)] == p.ID {
		delete(t.names, nameKey(old.Name))
	}

	cp := p
	t.players[p.ID] = &cp
	t.names[nameKey(p.Name)] = p.ID
}

// Quit removes a player and returns the last known state.
func (t *Tracker) Quit(id uuid.UUID) (Player, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return Player{}, false
	}

	delete(t.players, id)
	if t.names[nameKey(p.Name)] == id {
		delete(t.names, nameKey(p.Name))
	}
	return *p, true
}

// Move updates a player's position. Returns false for players that are not online.
func (t *Tracker) Move(id uuid.UUID, pos world.Position, inVehicle bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return false
	}
	p.Position = pos
	p.InVehicle = inVehicle
	return true
}

// Update changes a player's game mode and bypass flag.
func (t *Tracker) Update(id uuid.UUID, mode GameMode, bypass bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return false
	}
	p.GameMode = mode
	p.Bypass = bypass
	return true
}

func (t *Tracker) Get(id uuid.UUID) (Player, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// ByName finds an online player by display name, ignoring case.
func (t *Tracker) ByName(name string) (Player, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.names[nameKey(name)]
	if !ok {
		return Player{}, false
	}
	return *t.players[id], true
}

// Online returns a copy of every online player, ordered by name.
func (t *Tracker) Online() []Player {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := make([]Player, 0, len(t.players))
	for _, p := range t.players {
		list = append(list, *p)
	}
	slices.SortFunc(list, func(a, b Player) int {
		return strings.Compare(nameKey(a.Name), nameKey(b.Name))
	})
	return list
}

func nameKey(name string) string {
	return strings.ToLower(name)
}
