package protection

// Protection describes one protected resource: what it matches, what it costs and
// the depth at or below which it applies. The zero cost marks a tracked but free resource.
type Protection struct {
	identity     Identity
	cost         int
	depthCeiling int
}

func New(id Identity, cost int, depthCeiling int) Protection {
	return Protection{
		identity:     id,
		cost:         cost,
		depthCeiling: depthCeiling,
	}
}

func (p Protection) Identity() Identity {
	return p.identity
}

func (p Protection) Cost() int {
	return p.cost
}

func (p Protection) DepthCeiling() int {
	return p.depthCeiling
}

// Covers reports whether the protection applies at the given depth.
func (p Protection) Covers(depth int) bool {
	return depth <= p.depthCeiling
}
