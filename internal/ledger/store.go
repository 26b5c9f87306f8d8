package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Backend is the durable storage for ledgers. Load and LoadLegacy return a nil record
// and a nil error when nothing is stored.
type Backend interface {
	Load(ctx context.Context, id uuid.UUID) (*Record, error)
	Save(ctx context.Context, id uuid.UUID, r Record) error
	LoadLegacy(ctx context.Context, name string) (*Record, error)
	SaveLegacy(ctx context.Context, name string, r Record) error
	ArchiveLegacy(ctx context.Context, name string) error
}

// Hydration describes a player whose ledger may need to be created.
type Hydration struct {
	Name         string
	PlayedBefore bool
}

// Seed holds the starting balances for players without a stored ledger.
type Seed struct {
	StartingPoints int
	MaxPoints      int
}

// Store owns the in-memory ledgers of online players and their durable copies.
type Store struct {
	backend Backend

	mu      sync.RWMutex
	ledgers map[uuid.UUID]*Ledger
	seed    Seed

	hydrating singleflight.Group
}

func NewStore(b Backend, seed Seed) *Store {
	return &Store{
		backend: b,
		ledgers: map[uuid.UUID]*Ledger{},
		seed:    seed,
	}
}

// SetSeed replaces the starting balances used for new ledgers.
func (s *Store) SetSeed(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
}

func (s *Store) Seed() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}

// GetOrCreate returns the cached ledger for id, hydrating it from storage, importing
// a legacy record or seeding a fresh one on a miss. Concurrent calls for the same
// player share one hydration and receive the same instance.
func (s *Store) GetOrCreate(ctx context.Context, id uuid.UUID, h Hydration) *Ledger {
	if l := s.cached(id); l != nil {
		return l
	}

	v, _, _ := s.hydrating.Do(id.String(), func() (any, error) {
		if l := s.cached(id); l != nil {
			return l, nil
		}

		l := s.hydrate(ctx, id, h)

		s.mu.Lock()
		s.ledgers[id] = l
		s.mu.Unlock()

		return l, nil
	})

	return v.(*Ledger)
}

// GetIfPresent returns the cached ledger or looks in storage for one. Ledgers loaded from
// storage are not cached. Returns false if no ledger exists for id.
func (s *Store) GetIfPresent(ctx context.Context, id uuid.UUID) (*Ledger, bool) {
	if l := s.cached(id); l != nil {
		return l, true
	}

	rec, err := s.backend.Load(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "loading ledger", "player", id, "error", err)
		return nil, false
	}
	if rec == nil {
		return nil, false
	}

	return newLedger(id, "", *rec), true
}

// GetLegacy returns an unconverted legacy ledger for a display name, without importing it.
func (s *Store) GetLegacy(ctx context.Context, name string) (*Ledger, bool) {
	rec, err := s.backend.LoadLegacy(ctx, name)
	if err != nil {
		slog.ErrorContext(ctx, "loading legacy ledger", "name", name, "error", err)
		return nil, false
	}
	if rec == nil {
		return nil, false
	}

	return newLedger(uuid.Nil, name, *rec), true
}

// Save writes the ledger's durable fields. It is safe to call repeatedly.
// On failure the in-memory ledger is left untouched.
func (s *Store) Save(ctx context.Context, id uuid.UUID, l *Ledger) error {
	err := s.backend.Save(ctx, id, l.Record())
	if err != nil {
		return fmt.Errorf("saving ledger %s: %w", id, err)
	}
	l.dirty = false
	return nil
}

// SaveLegacy writes a ledger back to the legacy record it was read from.
func (s *Store) SaveLegacy(ctx context.Context, name string, l *Ledger) error {
	err := s.backend.SaveLegacy(ctx, name, l.Record())
	if err != nil {
		return fmt.Errorf("saving legacy ledger %q: %w", name, err)
	}
	l.dirty = false
	return nil
}

// Get returns the cached ledger without touching storage.
func (s *Store) Get(id uuid.UUID) (*Ledger, bool) {
	l := s.cached(id)
	return l, l != nil
}

// Evict drops the cached ledger. It never saves.
func (s *Store) Evict(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, id)
}

// Cached returns every ledger currently held in memory.
func (s *Store) Cached() []*Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Ledger, 0, len(s.ledgers))
	for _, l := range s.ledgers {
		list = append(list, l)
	}
	return list
}

func (s *Store) cached(id uuid.UUID) *Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgers[id]
}

func (s *Store) hydrate(ctx context.Context, id uuid.UUID, h Hydration) *Ledger {
	rec, err := s.backend.Load(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "loading ledger, treating as absent", "player", id, "error", err)
		rec = nil
	}
	if rec != nil {
		return newLedger(id, h.Name, *rec)
	}

	if l := s.importLegacy(ctx, id, h.Name); l != nil {
		return l
	}

	// Players who were around before the ledger existed start at the maximum.
	seed := s.Seed()
	points := seed.StartingPoints
	if h.PlayedBefore {
		points = seed.MaxPoints
	}

	slog.DebugContext(ctx, "created ledger", "player", id, "name", h.Name, "points", points)
	return newLedger(id, h.Name, Record{Points: points})
}

// importLegacy converts a per-name legacy record into a ledger for id, saves it and
// archives the legacy record. Returns nil if there is nothing to import.
func (s *Store) importLegacy(ctx context.Context, id uuid.UUID, name string) *Ledger {
	if name == "" {
		return nil
	}

	rec, err := s.backend.LoadLegacy(ctx, name)
	if err != nil {
		slog.ErrorContext(ctx, "loading legacy ledger", "name", name, "error", err)
		return nil
	}
	if rec == nil {
		return nil
	}

	l := newLedger(id, name, Record{
		Points:            rec.Points,
		LimitReachedCount: rec.LimitReachedCount,
	})
	l.MarkDirty()

	err = s.Save(ctx, id, l)
	if err != nil {
		// Leave the legacy record in place so the import can be retried.
		slog.WarnContext(ctx, "saving imported legacy ledger, not archiving", "name", name, "player", id, "error", err)
		return l
	}

	err = s.backend.ArchiveLegacy(ctx, name)
	if err != nil {
		slog.WarnContext(ctx, "archiving legacy ledger", "name", name, "points", rec.Points, "limit_reached_count", rec.LimitReachedCount, "error", err)
	}

	slog.InfoContext(ctx, "imported legacy ledger", "name", name, "player", id, "points", l.Points)
	return l
}
