package billing

import "time"

const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanFamily  = "family"
)

const (
	StatusTrial    = "trial"
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusExpired  = "expired"
)

// Snapshot is the read-only subscription state the payment pipeline leaves
// behind. The visibility engine only ever reads it.
type Snapshot struct {
	UserID    string     `json:"user_id"`
	Plan      string     `json:"tier"`
	Status    string     `json:"status"`
	TrialEnd  *time.Time `json:"trial_end,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Entitled reports whether the snapshot currently permits the account's
// content to be visible to others. Pure function of snapshot and clock.
func Entitled(snap Snapshot, now time.Time) bool {
	switch snap.Status {
	case StatusActive, StatusCanceled:
		// Canceled keeps its grace period until the pipeline flips it
		// to expired.
		return snap.Plan == PlanPremium || snap.Plan == PlanFamily
	case StatusTrial:
		// A trial with no recorded end stays entitled; legacy accounts
		// never had one set.
		return snap.TrialEnd == nil || snap.TrialEnd.After(now)
	default:
		return false
	}
}
