package follow

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Edge is a directed follow relationship. Mutual following is two
// independent edges; nothing here is implicit.
type Edge struct {
	FollowerID    string    `json:"follower_id"`
	FolloweeID    string    `json:"followee_id"`
	Status        string    `json:"status"`
	IsCloseFamily bool      `json:"is_close_family"`
	CreatedAt     time.Time `json:"created_at"`
}
