package protection

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-errors"
)

// Entry is one configured protected block before resolution. Nil fields were omitted
// by the configuration author and fall back to the next layer.
type Entry struct {
	Key          string
	Cost         *int
	DepthCeiling *int
}

// WorldLayer is the configuration of one protected world.
type WorldLayer struct {
	Name string
	// Configured is false when the world is listed without a section of its own; such
	// worlds get the global defaults unchanged.
	Configured   bool
	DefaultDepth *int
	Entries      []Entry
}

// Layers is the complete input to Build: global defaults plus per-world overrides.
type Layers struct {
	DefaultDepth int
	Defaults     []Entry
	Worlds       []WorldLayer
}

// Used when the global layer yields no valid entry.
var builtinDefaults = []resolved{
	{id: NewIdentity(56), cost: 100, depth: 20},
	{id: NewIdentity(129), cost: 50, depth: 35},
}

type resolved struct {
	id    Identity
	cost  int
	depth int
}

type resolvedList []resolved

func (l resolvedList) find(id Identity) (resolved, bool) {
	for _, r := range l {
		if r.id == id {
			return r, true
		}
	}
	return resolved{}, false
}

// put replaces an entry with the same identity, moving it to the end.
func (l resolvedList) put(r resolved) (resolvedList, bool) {
	for i, e := range l {
		if e.id == r.id {
			l = append(l[:i:i], l[i+1:]...)
			return append(l, r), true
		}
	}
	return append(l, r), false
}

// Build resolves the layers into a Snapshot. Precedence for every field is
// world identity override, then world default depth with the global cost, then the
// global entry, then the global default depth. Malformed entries are skipped; they are
// reported in the returned error, which is never fatal: the snapshot is always usable.
func Build(l Layers, cat Catalog) (*Snapshot, error) {
	el := errors.NewErrorList()

	var defaults resolvedList
	for _, e := range l.Defaults {
		id, err := ParseIdentity(e.Key, cat)
		if err != nil {
			el.Add(fmt.Errorf("protected_blocks %q: %w", e.Key, err))
			continue
		}

		r := resolved{id: id, cost: valueOr(e.Cost, 0), depth: valueOr(e.DepthCeiling, l.DefaultDepth)}

		var dup bool
		defaults, dup = defaults.put(r)
		if dup {
			slog.Warn("duplicate protected block in defaults, later entry wins", "key", e.Key, "block", r.id.Key(cat))
		}
	}

	if len(defaults) == 0 {
		defaults = append(defaults, builtinDefaults...)
	}

	snap := NewSnapshot()
	for _, w := range l.Worlds {
		snap.AddWorld(w.Name)

		if !w.Configured {
			for _, d := range defaults {
				snap.Add(w.Name, New(d.id, d.cost, d.depth))
			}
			continue
		}

		depthSet := w.DefaultDepth != nil
		worldDepth := valueOr(w.DefaultDepth, l.DefaultDepth)

		for _, d := range defaults {
			depth := d.depth
			if depthSet {
				depth = worldDepth
			}
			snap.Add(w.Name, New(d.id, d.cost, depth))
		}

		var overrides resolvedList
		for _, e := range w.Entries {
			id, err := ParseIdentity(e.Key, cat)
			if err != nil {
				el.Add(fmt.Errorf("worlds %q protected_blocks %q: %w", w.Name, e.Key, err))
				continue
			}

			cost := 0
			depth := worldDepth
			if d, ok := defaults.find(id); ok {
				cost = d.cost
				if !depthSet {
					depth = d.depth
				}
			}

			r := resolved{id: id, cost: valueOr(e.Cost, cost), depth: valueOr(e.DepthCeiling, depth)}

			var dup bool
			overrides, dup = overrides.put(r)
			if dup {
				slog.Warn("duplicate protected block in world, later entry wins", "world", w.Name, "key", e.Key, "block", r.id.Key(cat))
			}
		}

		for _, r := range overrides {
			snap.Add(w.Name, New(r.id, r.cost, r.depth))
		}
	}

	return snap, el.Err()
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
