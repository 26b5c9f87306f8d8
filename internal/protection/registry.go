package protection

import (
	"slices"
	"sync/atomic"
)

// Snapshot is an immutable, fully built set of per-world protections.
type Snapshot struct {
	worlds map[string][]Protection
}

// NewSnapshot returns an empty snapshot. Use AddWorld and Add while building it,
// and never mutate it after handing it to a Registry.
func NewSnapshot() *Snapshot {
	return &Snapshot{worlds: map[string][]Protection{}}
}

// AddWorld marks a world as protected, even if it ends up with no entries.
func (s *Snapshot) AddWorld(world string) {
	if _, ok := s.worlds[world]; !ok {
		s.worlds[world] = []Protection{}
	}
}

// Add appends p to the world's list. An existing entry with the same identity is
// removed first so there is at most one protection per identity per world.
func (s *Snapshot) Add(world string, p Protection) {
	list := s.worlds[world]
	list = slices.DeleteFunc(list, func(e Protection) bool {
		return e.identity == p.identity
	})
	s.worlds[world] = append(list, p)
}

// Protections returns the ordered protections for a world and whether the world is protected.
func (s *Snapshot) Protections(world string) ([]Protection, bool) {
	list, ok := s.worlds[world]
	return list, ok
}

// Worlds returns the protected world names in sorted order.
func (s *Snapshot) Worlds() []string {
	names := make([]string, 0, len(s.worlds))
	for name := range s.worlds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the first protection in the world whose identity matches id and
// whose depth ceiling covers depth.
func (s *Snapshot) Resolve(world string, id Identity, depth int) (Protection, bool) {
	for _, p := range s.worlds[world] {
		if p.identity.Matches(id) && p.Covers(depth) {
			return p, true
		}
	}
	return Protection{}, false
}

// Registry holds the active Snapshot. Reloads swap in a complete snapshot so readers
// never observe a partially built registry.
type Registry struct {
	current atomic.Pointer[Snapshot]
}

func NewRegistry(s *Snapshot) *Registry {
	r := &Registry{}
	r.Replace(s)
	return r
}

// Replace atomically installs a new snapshot. A nil snapshot installs an empty one.
func (r *Registry) Replace(s *Snapshot) {
	if s == nil {
		s = NewSnapshot()
	}
	r.current.Store(s)
}

func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// IsWorldProtected reports whether the world has an entry, even an empty one.
func (r *Registry) IsWorldProtected(world string) bool {
	_, ok := r.Snapshot().Protections(world)
	return ok
}

func (r *Registry) Protections(world string) ([]Protection, bool) {
	return r.Snapshot().Protections(world)
}

func (r *Registry) Resolve(world string, id Identity, depth int) (Protection, bool) {
	return r.Snapshot().Resolve(world, id, depth)
}
