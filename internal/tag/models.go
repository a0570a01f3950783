package tag

import (
	"encoding/json"
	"time"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Subject is who a tag points at: exactly one of a user or a placeholder
// profile. The closed interface makes "never both, never neither" a
// compile-time property instead of two nullable columns.
type Subject interface {
	isTagSubject()
}

// TaggedUser tags a real account. Starts pending unless self-tagged, and
// can propagate visibility to the user's followers once accepted.
type TaggedUser struct {
	UserID string
}

// TaggedProfile tags a placeholder profile for someone without an account.
// Always auto-accepted (nobody can consent) and never grants visibility.
type TaggedProfile struct {
	ProfileID string
}

func (TaggedUser) isTagSubject()    {}
func (TaggedProfile) isTagSubject() {}

type Tag struct {
	ID         string
	ItemID     string
	Subject    Subject
	TaggedByID string
	Status     string
	CreatedAt  time.Time
}

func (t Tag) MarshalJSON() ([]byte, error) {
	out := struct {
		ID              string    `json:"id"`
		ItemID          string    `json:"item_id"`
		TaggedUserID    string    `json:"tagged_user_id,omitempty"`
		TaggedProfileID string    `json:"tagged_profile_id,omitempty"`
		TaggedByID      string    `json:"tagged_by_id"`
		Status          string    `json:"status"`
		CreatedAt       time.Time `json:"created_at"`
	}{
		ID:         t.ID,
		ItemID:     t.ItemID,
		TaggedByID: t.TaggedByID,
		Status:     t.Status,
		CreatedAt:  t.CreatedAt,
	}
	switch subject := t.Subject.(type) {
	case TaggedUser:
		out.TaggedUserID = subject.UserID
	case TaggedProfile:
		out.TaggedProfileID = subject.ProfileID
	}
	return json.Marshal(out)
}

// subjectFromRow rebuilds the union from the two nullable columns. Rows
// violating exclusivity are a write-path integrity bug; reads skip them.
func subjectFromRow(userID, profileID *string) (Subject, bool) {
	switch {
	case userID != nil && profileID == nil:
		return TaggedUser{UserID: *userID}, true
	case userID == nil && profileID != nil:
		return TaggedProfile{ProfileID: *profileID}, true
	default:
		return nil, false
	}
}
