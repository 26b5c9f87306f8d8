package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/world"
)

// Record is the durable subset of a Ledger.
type Record struct {
	Points            int `json:"points" db:"points"`
	LimitReachedCount int `json:"limit_reached_count" db:"limit_reached_count"`
}

func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("record is empty")
	}
	if r.LimitReachedCount < 0 {
		return fmt.Errorf("limit_reached_count must not be negative")
	}
	return nil
}

// Ledger is one player's economy state. It is not safe for concurrent use; all
// access is expected to happen on the driver loop.
type Ledger struct {
	PlayerID uuid.UUID
	Name     string

	Points            int
	LimitReachedCount int

	// FractionalCarry holds income below one point, always in [0,1).
	FractionalCarry float64

	// Session state, reset whenever the ledger is hydrated.
	InactivityMinutes        int
	NotifiedLimitThisSession bool
	LastKnownPosition        *world.Position
	LastPlacedPosition       *world.BlockPos

	dirty bool
}

func newLedger(id uuid.UUID, name string, r Record) *Ledger {
	return &Ledger{
		PlayerID:          id,
		Name:              name,
		Points:            r.Points,
		LimitReachedCount: r.LimitReachedCount,
	}
}

// Record returns the durable part of the ledger.
func (l *Ledger) Record() Record {
	return Record{
		Points:            l.Points,
		LimitReachedCount: l.LimitReachedCount,
	}
}

// Dirty reports whether the ledger holds changes that still need an immediate save.
func (l *Ledger) Dirty() bool {
	return l.dirty
}

// MarkDirty flags the ledger for persistence on the next save.
func (l *Ledger) MarkDirty() {
	l.dirty = true
}
