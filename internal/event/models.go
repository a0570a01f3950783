package event

import (
	"time"

	"backend-kinfolk/internal/visibility"
)

// Event is a shared content item. OwnerID never changes after creation;
// there is no transfer operation.
type Event struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	PrivacyTier   visibility.Tier `json:"privacy_tier"`
	CustomGroupID string          `json:"custom_group_id,omitempty"`
	IsPublished   bool            `json:"is_published"`
	IsDeleted     bool            `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// VisibilityItem projects the event into the shape the resolution engine
// evaluates. Draft and deleted filtering happens before this projection.
func (e Event) VisibilityItem() visibility.Item {
	return visibility.Item{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		Tier:          e.PrivacyTier,
		CustomGroupID: e.CustomGroupID,
	}
}
