package world

import "fmt"

// Position is a player location inside a named world.
type Position struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// SameWorld reports whether both positions are in the same world.
func (p Position) SameWorld(o Position) bool {
	return p.World == o.World
}

// DistanceSquared returns the squared straight-line distance between two positions.
// The world is ignored; callers check SameWorld first.
func (p Position) DistanceSquared(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

func (p Position) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)", p.World, int(p.X), int(p.Y), int(p.Z))
}

// BlockPos is the integer coordinate of a single block.
type BlockPos struct {
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

// Depth returns the vertical coordinate used for depth ceiling checks.
func (b BlockPos) Depth() int {
	return b.Y
}

func (b BlockPos) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)", b.World, b.X, b.Y, b.Z)
}
