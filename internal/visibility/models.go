package visibility

// Tier is the declared visibility class of an event.
type Tier string

const (
	TierPublic      Tier = "public"
	TierFollowers   Tier = "followers"
	TierCloseFamily Tier = "close_family"
	TierCustomGroup Tier = "custom_group"
	TierPrivate     Tier = "private"
)

// Item is the minimal snapshot of an event the engine needs. Deleted and
// unpublished events are filtered out before they reach the engine.
type Item struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Tier          Tier   `json:"privacy_tier"`
	CustomGroupID string `json:"custom_group_id,omitempty"`
}

// Denial is display metadata for a denied viewer. It carries no
// authorization weight; the booleans from CanView decide access.
type Denial struct {
	Tier   Tier   `json:"tier"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}
