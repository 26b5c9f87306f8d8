package world

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestPosition_DistanceSquared(t *testing.T) {
	tests := map[string]struct {
		a   Position
		b   Position
		exp float64
	}{
		"same point": {
			a:   Position{World: "world", X: 1, Y: 2, Z: 3},
			b:   Position{World: "world", X: 1, Y: 2, Z: 3},
			exp: 0,
		},
		"three blocks along x": {
			a:   Position{World: "world"},
			b:   Position{World: "world", X: 3},
			exp: 9,
		},
		"diagonal": {
			a:   Position{World: "world", X: 1, Y: 1, Z: 1},
			b:   Position{World: "world", X: 2, Y: 3, Z: 4},
			exp: 14,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "distance", tt.a.DistanceSquared(tt.b), tt.exp)
		})
	}
}

func TestPosition_SameWorld(t *testing.T) {
	a := Position{World: "world"}
	testutil.AssertEqual(t, "same", a.SameWorld(Position{World: "world", X: 10}), true)
	testutil.AssertEqual(t, "other", a.SameWorld(Position{World: "world_nether"}), false)
}

func TestBlockPos_String(t *testing.T) {
	b := BlockPos{World: "world", X: 4, Y: -12, Z: 9}
	testutil.AssertEqual(t, "string", b.String(), "world(4,-12,9)")
	testutil.AssertEqual(t, "depth", b.Depth(), -12)
}
