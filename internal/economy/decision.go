package economy

import (
	"fmt"

	"github.com/pixil98/go-antixray/internal/protection"
)

type Outcome int

const (
	Allow Outcome = iota
	AllowAndCharge
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case AllowAndCharge:
		return "charge"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// UnknownETA is reported when the policy grants no income, so a denied player never recovers.
const UnknownETA = -1

// Decision is the result of one extraction attempt.
type Decision struct {
	Outcome Outcome

	// Amount is the cost to charge, set for AllowAndCharge.
	Amount int

	// ETAMinutes is how long until the player can afford the resource, set for Deny.
	ETAMinutes int

	// Protection is the entry the decision was made against, if any.
	Protection *protection.Protection
}

// Allowed reports whether the extraction may go ahead.
func (d Decision) Allowed() bool {
	return d.Outcome != Deny
}

// etaMinutes returns ceil(deficit / pointsPerHour * 60), never less than 1.
func etaMinutes(deficit int, pointsPerHour int) int {
	if pointsPerHour <= 0 {
		return UnknownETA
	}
	eta := (deficit*60 + pointsPerHour - 1) / pointsPerHour
	return max(eta, 1)
}
