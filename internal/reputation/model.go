// Package reputation keeps one point account per user and derives a
// tier label from the running total. Awards are atomic per user so
// concurrent grants never lose an increment.
package reputation

import "errors"

// ErrAccountNotFound is returned when no account exists for a user.
var ErrAccountNotFound = errors.New("reputation account not found")

// ErrNegativePoints is returned by Award for a non-positive grant.
var ErrNegativePoints = errors.New("award points must be positive")

// Account is a user's reputation record. Tier is derived from Points,
// never stored.
type Account struct {
	UserID    string `json:"user_id"`
	Points    int    `json:"points"`
	Tier      Tier   `json:"tier"`
}

// Tier is a reputation band derived from the point total.
type Tier string

// Tiers in ascending order.
const (
	TierNewcomer Tier = "NEWCOMER"
	TierRegular  Tier = "REGULAR"
	TierVIP      Tier = "VIP"
)

// Tier thresholds: a tier applies from its threshold up to the next.
const (
	RegularThreshold = 50
	VIPThreshold     = 200
)

// TierFor maps a point total to its tier. Monotonic: more points never
// yields a lower tier.
func TierFor(points int) Tier {
	switch {
	case points >= VIPThreshold:
		return TierVIP
	case points >= RegularThreshold:
		return TierRegular
	default:
		return TierNewcomer
	}
}
