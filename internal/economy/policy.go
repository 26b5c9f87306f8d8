package economy

import "fmt"

// Policy holds the economy tunables read from the settings document.
type Policy struct {
	PointsPerHour int
	MaxPoints     int

	// IgnoreMaxPointsForBlockRatio disables the clamp to MaxPoints after a charge.
	// The clamp only changes anything for negative (bonus) costs.
	IgnoreMaxPointsForBlockRatio bool

	// NotifyOnLimitReached publishes an alert the first time a player runs dry in a session.
	NotifyOnLimitReached bool
}

// DefaultPolicy returns the values used when the settings document omits them.
func DefaultPolicy() Policy {
	return Policy{
		PointsPerHour:                800,
		MaxPoints:                    1600,
		IgnoreMaxPointsForBlockRatio: true,
	}
}

func (p Policy) Validate() error {
	if p.PointsPerHour <= 0 {
		return fmt.Errorf("points_per_hour must be positive")
	}
	return nil
}

// PointsPerMinute is the income granted for one active minute.
func (p Policy) PointsPerMinute() float64 {
	return float64(p.PointsPerHour) / 60
}
