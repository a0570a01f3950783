package visibility

import (
	"context"
	"time"
)

// DescribeDenial explains a deny to the viewer. Purely for display; callers
// must gate on CanView, never on this.
func (e *Engine) DescribeDenial(ctx context.Context, item Item, now time.Time) (Denial, error) {
	entitled, err := e.entitlements.IsEntitled(ctx, item.OwnerID, now)
	if err != nil {
		return Denial{}, err
	}
	if !entitled {
		return Denial{
			Tier:   item.Tier,
			Label:  tierLabel(item.Tier),
			Reason: "This event is currently unavailable because the creator's subscription has expired.",
		}, nil
	}

	return Denial{
		Tier:   item.Tier,
		Label:  tierLabel(item.Tier),
		Reason: tierReason(item.Tier),
	}, nil
}

func tierLabel(tier Tier) string {
	switch tier {
	case TierPublic:
		return "Public"
	case TierFollowers:
		return "Followers only"
	case TierCloseFamily:
		return "Close family only"
	case TierCustomGroup:
		return "Custom group"
	case TierPrivate:
		return "Private"
	default:
		return "Restricted"
	}
}

func tierReason(tier Tier) string {
	switch tier {
	case TierFollowers:
		return "Only accepted followers of the creator can see this event."
	case TierCloseFamily:
		return "Only close family members of the creator can see this event."
	case TierCustomGroup:
		return "Only members of the creator's chosen group can see this event."
	case TierPrivate:
		return "Only the creator can see this event."
	default:
		return "You do not have access to this event."
	}
}
