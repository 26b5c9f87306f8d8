package economy

import (
	"github.com/pixil98/go-antixray/internal/protection"
	"github.com/pixil98/go-antixray/internal/world"
)

// Item is one block caught in an area destruction.
type Item struct {
	Identity protection.Identity
	Pos      world.BlockPos
}

// Resolver finds the protection covering a resource in a world.
type Resolver interface {
	Resolve(world string, id protection.Identity, depth int) (protection.Protection, bool)
}

// ExplosionFilter vetoes the destruction of paid resources in bulk. It never touches a ledger.
type ExplosionFilter struct {
	resolver Resolver
}

func NewExplosionFilter(r Resolver) *ExplosionFilter {
	return &ExplosionFilter{resolver: r}
}

// Filter returns the items that may be destroyed and the ones that must be kept.
// An item is kept iff it resolves to a protection with a positive cost whose ceiling
// covers its depth. Free protections never block destruction.
func (f *ExplosionFilter) Filter(worldName string, items []Item) (destroy []Item, keep []Item) {
	destroy = make([]Item, 0, len(items))
	for _, it := range items {
		if f.protected(worldName, it) {
			keep = append(keep, it)
			continue
		}
		destroy = append(destroy, it)
	}
	return destroy, keep
}

func (f *ExplosionFilter) protected(worldName string, it Item) bool {
	p, ok := f.resolver.Resolve(worldName, it.Identity, it.Pos.Depth())
	if !ok {
		return false
	}
	return p.Covers(it.Pos.Depth()) && p.Cost() > 0
}
