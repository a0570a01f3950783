package visibility

import (
	"context"
	"time"
)

// FollowReader answers directed follow-graph queries. All queries are
// read-only; a visibility check never mutates graph state.
type FollowReader interface {
	IsAcceptedFollower(ctx context.Context, followerID, followeeID string) (bool, error)
	IsCloseFamilyFollower(ctx context.Context, followerID, followeeID string) (bool, error)
	// AcceptedFollowees returns every followee the follower has an accepted
	// edge to, mapped to the edge's close-family flag.
	AcceptedFollowees(ctx context.Context, followerID string) (map[string]bool, error)
}

// TagReader exposes accepted user tags. Placeholder-profile tags never
// appear here: they have no audience of their own and grant no visibility.
type TagReader interface {
	AcceptedUserTags(ctx context.Context, itemID string) ([]string, error)
	AcceptedUserTagsForItems(ctx context.Context, itemIDs []string) (map[string][]string, error)
}

// GroupReader answers custom-group membership. Membership is not
// re-validated against follow status at read time.
type GroupReader interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	GroupsWithMember(ctx context.Context, userID string, groupIDs []string) (map[string]bool, error)
}

// EntitlementReader reports whether an owner's subscription state currently
// permits their content to be visible to others. Evaluated fresh per check.
type EntitlementReader interface {
	IsEntitled(ctx context.Context, userID string, now time.Time) (bool, error)
	EntitledOwners(ctx context.Context, ownerIDs []string, now time.Time) (map[string]bool, error)
}

// Engine resolves (item, viewer) visibility. It is stateless and safe for
// concurrent use; callers supply consistent snapshots through the readers.
type Engine struct {
	follows      FollowReader
	tags         TagReader
	groups       GroupReader
	entitlements EntitlementReader
}

func NewEngine(follows FollowReader, tags TagReader, groups GroupReader, entitlements EntitlementReader) *Engine {
	return &Engine{
		follows:      follows,
		tags:         tags,
		groups:       groups,
		entitlements: entitlements,
	}
}

// factSource is the single set of facts the decision rule reads. The
// single-item path binds it to live readers; the bulk path binds it to a
// prefetched snapshot. Both feed the same decide function, so the detail
// check and the feed filter cannot drift apart.
type factSource interface {
	ownerEntitled(ctx context.Context, ownerID string) (bool, error)
	acceptedFollower(ctx context.Context, followeeID string) (bool, error)
	closeFamilyFollower(ctx context.Context, followeeID string) (bool, error)
	groupMember(ctx context.Context, groupID string) (bool, error)
	taggedUsers(ctx context.Context, itemID string) ([]string, error)
}

// CanView reports whether viewerID may see item. An empty viewerID is an
// anonymous viewer.
func (e *Engine) CanView(ctx context.Context, item Item, viewerID string, now time.Time) (bool, error) {
	facts := &liveFacts{engine: e, viewerID: viewerID, now: now}
	return decide(ctx, facts, item, viewerID)
}

// FilterVisible returns the subset of items viewerID may see, preserving
// order. It prefetches the follow, tag, group and entitlement facts for the
// whole candidate set and then runs the same decision rule as CanView.
func (e *Engine) FilterVisible(ctx context.Context, items []Item, viewerID string, now time.Time) ([]Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	facts, err := e.prefetch(ctx, items, viewerID, now)
	if err != nil {
		return nil, err
	}

	visible := make([]Item, 0, len(items))
	for _, item := range items {
		ok, err := decide(ctx, facts, item, viewerID)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

// decide is the one authorization rule. Precedence, in order: ownership,
// owner entitlement, public/private tiers, anonymous cutoff, tier-specific
// relationship, tag grant. Anything unrecognized or malformed denies.
func decide(ctx context.Context, facts factSource, item Item, viewerID string) (bool, error) {
	// Owners always see their own items, entitled or not.
	if viewerID != "" && viewerID == item.OwnerID {
		return true, nil
	}

	entitled, err := facts.ownerEntitled(ctx, item.OwnerID)
	if err != nil {
		return false, err
	}
	if !entitled {
		return false, nil
	}

	switch item.Tier {
	case TierPublic:
		return true, nil
	case TierPrivate:
		// No tag grant past this point.
		return false, nil
	}

	if viewerID == "" {
		return false, nil
	}

	switch item.Tier {
	case TierFollowers:
		ok, err := facts.acceptedFollower(ctx, item.OwnerID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	case TierCloseFamily:
		ok, err := facts.closeFamilyFollower(ctx, item.OwnerID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	case TierCustomGroup:
		if item.CustomGroupID != "" {
			ok, err := facts.groupMember(ctx, item.CustomGroupID)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	default:
		// Unrecognized tier: fail closed.
		return false, nil
	}

	// Tag grant: the viewer accepted-follows someone who is an accepted
	// user tag on the item. Layered on top of the tier rule, never a
	// restriction of it.
	tagged, err := facts.taggedUsers(ctx, item.ID)
	if err != nil {
		return false, err
	}
	for _, taggedID := range tagged {
		ok, err := facts.acceptedFollower(ctx, taggedID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// liveFacts reads each fact on demand, for single-item checks.
type liveFacts struct {
	engine   *Engine
	viewerID string
	now      time.Time
}

func (f *liveFacts) ownerEntitled(ctx context.Context, ownerID string) (bool, error) {
	return f.engine.entitlements.IsEntitled(ctx, ownerID, f.now)
}

func (f *liveFacts) acceptedFollower(ctx context.Context, followeeID string) (bool, error) {
	return f.engine.follows.IsAcceptedFollower(ctx, f.viewerID, followeeID)
}

func (f *liveFacts) closeFamilyFollower(ctx context.Context, followeeID string) (bool, error) {
	return f.engine.follows.IsCloseFamilyFollower(ctx, f.viewerID, followeeID)
}

func (f *liveFacts) groupMember(ctx context.Context, groupID string) (bool, error) {
	return f.engine.groups.IsMember(ctx, groupID, f.viewerID)
}

func (f *liveFacts) taggedUsers(ctx context.Context, itemID string) ([]string, error) {
	return f.engine.tags.AcceptedUserTags(ctx, itemID)
}

// bulkFacts answers from maps prefetched once per candidate set. A missing
// key is a false fact, never an allow.
type bulkFacts struct {
	entitled  map[string]bool
	followees map[string]bool
	members   map[string]bool
	tags      map[string][]string
}

func (e *Engine) prefetch(ctx context.Context, items []Item, viewerID string, now time.Time) (*bulkFacts, error) {
	ownerSet := map[string]struct{}{}
	groupSet := map[string]struct{}{}
	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		ownerSet[item.OwnerID] = struct{}{}
		itemIDs = append(itemIDs, item.ID)
		if item.Tier == TierCustomGroup && item.CustomGroupID != "" {
			groupSet[item.CustomGroupID] = struct{}{}
		}
	}

	owners := make([]string, 0, len(ownerSet))
	for owner := range ownerSet {
		owners = append(owners, owner)
	}
	entitled, err := e.entitlements.EntitledOwners(ctx, owners, now)
	if err != nil {
		return nil, err
	}

	facts := &bulkFacts{
		entitled:  entitled,
		followees: map[string]bool{},
		members:   map[string]bool{},
		tags:      map[string][]string{},
	}
	if viewerID == "" {
		// Anonymous viewers never reach the relationship facts.
		return facts, nil
	}

	facts.followees, err = e.follows.AcceptedFollowees(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if len(groupSet) > 0 {
		groupIDs := make([]string, 0, len(groupSet))
		for groupID := range groupSet {
			groupIDs = append(groupIDs, groupID)
		}
		facts.members, err = e.groups.GroupsWithMember(ctx, viewerID, groupIDs)
		if err != nil {
			return nil, err
		}
	}

	facts.tags, err = e.tags.AcceptedUserTagsForItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	return facts, nil
}

func (f *bulkFacts) ownerEntitled(_ context.Context, ownerID string) (bool, error) {
	return f.entitled[ownerID], nil
}

func (f *bulkFacts) acceptedFollower(_ context.Context, followeeID string) (bool, error) {
	_, ok := f.followees[followeeID]
	return ok, nil
}

func (f *bulkFacts) closeFamilyFollower(_ context.Context, followeeID string) (bool, error) {
	return f.followees[followeeID], nil
}

func (f *bulkFacts) groupMember(_ context.Context, groupID string) (bool, error) {
	return f.members[groupID], nil
}

func (f *bulkFacts) taggedUsers(_ context.Context, itemID string) ([]string, error) {
	return f.tags[itemID], nil
}
