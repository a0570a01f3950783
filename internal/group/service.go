package group

import (
	"context"
	"errors"

	"backend-kinfolk/internal/db"

	"github.com/google/uuid"
)

var (
	ErrNotOwner    = errors.New("only the group owner can modify the group")
	ErrNotFollowed = errors.New("member must be accepted-followed by the owner")
)

// followChecker is the one follow-graph fact group writes depend on.
type followChecker interface {
	IsAcceptedFollower(ctx context.Context, followerID, followeeID string) (bool, error)
}

type Service struct {
	db      db.Querier
	follows followChecker
}

func NewService(querier db.Querier, follows followChecker) *Service {
	return &Service{db: querier, follows: follows}
}

func (s *Service) Create(ctx context.Context, ownerID, name string) (Group, error) {
	g := Group{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO custom_groups (id, owner_id, name)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, g.ID, g.OwnerID, g.Name)
	if err := row.Scan(&g.CreatedAt); err != nil {
		return Group{}, err
	}
	return g, nil
}

// AddMember adds a user the owner accepted-follows at this moment.
// Membership is deliberately not re-validated against follow status later;
// unfollowing someone does not silently drop them from groups.
func (s *Service) AddMember(ctx context.Context, groupID, ownerID, userID string) error {
	owner, err := s.ownerOf(ctx, groupID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrNotOwner
	}

	followed, err := s.follows.IsAcceptedFollower(ctx, ownerID, userID)
	if err != nil {
		return err
	}
	if !followed {
		return ErrNotFollowed
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO custom_group_members (group_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, groupID, userID)
	return err
}

func (s *Service) RemoveMember(ctx context.Context, groupID, ownerID, userID string) error {
	owner, err := s.ownerOf(ctx, groupID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrNotOwner
	}

	_, err = s.db.Exec(ctx, `
		DELETE FROM custom_group_members WHERE group_id=$1 AND user_id=$2
	`, groupID, userID)
	return err
}

func (s *Service) Delete(ctx context.Context, groupID, ownerID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM custom_groups WHERE id=$1 AND owner_id=$2
	`, groupID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) Members(ctx context.Context, groupID string) ([]Member, error) {
	rows, err := s.db.Query(ctx, `
		SELECT group_id, user_id, added_at
		FROM custom_group_members WHERE group_id=$1
		ORDER BY added_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.AddedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *Service) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM custom_group_members
			WHERE group_id=$1 AND user_id=$2
		)
	`, groupID, userID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GroupsWithMember returns which of the given groups contain the user.
func (s *Service) GroupsWithMember(ctx context.Context, userID string, groupIDs []string) (map[string]bool, error) {
	if len(groupIDs) == 0 {
		return map[string]bool{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT group_id FROM custom_group_members
		WHERE user_id=$1 AND group_id = ANY($2)
	`, userID, groupIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := map[string]bool{}
	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return nil, err
		}
		groups[groupID] = true
	}
	return groups, nil
}

func (s *Service) ownerOf(ctx context.Context, groupID string) (string, error) {
	row := s.db.QueryRow(ctx, `SELECT owner_id FROM custom_groups WHERE id=$1`, groupID)
	var ownerID string
	if err := row.Scan(&ownerID); err != nil {
		return "", err
	}
	return ownerID, nil
}
