package tag

import (
	"context"
	"errors"

	"backend-kinfolk/internal/db"

	"github.com/google/uuid"
)

var (
	ErrNotTagged    = errors.New("tag not addressed to user")
	ErrNotOwner     = errors.New("only the item owner can remove tags")
	ErrEmptySubject = errors.New("tag subject required")
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// TagUser tags an account on an item. Pending until the tagged user
// accepts; tagging yourself is auto-accepted.
func (s *Service) TagUser(ctx context.Context, itemID, taggedUserID, taggedByID string) (Tag, error) {
	if taggedUserID == "" {
		return Tag{}, ErrEmptySubject
	}
	status := StatusPending
	if taggedUserID == taggedByID {
		status = StatusAccepted
	}
	t := Tag{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		Subject:    TaggedUser{UserID: taggedUserID},
		TaggedByID: taggedByID,
		Status:     status,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tags (id, item_id, tagged_user_id, tagged_by_id, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, t.ID, t.ItemID, taggedUserID, t.TaggedByID, t.Status)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// TagProfile tags a placeholder profile. Always accepted; the tagged party
// cannot consent or object.
func (s *Service) TagProfile(ctx context.Context, itemID, profileID, taggedByID string) (Tag, error) {
	if profileID == "" {
		return Tag{}, ErrEmptySubject
	}
	t := Tag{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		Subject:    TaggedProfile{ProfileID: profileID},
		TaggedByID: taggedByID,
		Status:     StatusAccepted,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tags (id, item_id, tagged_profile_id, tagged_by_id, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, t.ID, t.ItemID, profileID, t.TaggedByID, t.Status)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Accept marks a tag accepted. Only the tagged user may transition status.
func (s *Service) Accept(ctx context.Context, tagID, userID string) error {
	return s.setStatus(ctx, tagID, userID, StatusAccepted)
}

// Reject marks a tag rejected. Only the tagged user may transition status.
func (s *Service) Reject(ctx context.Context, tagID, userID string) error {
	return s.setStatus(ctx, tagID, userID, StatusRejected)
}

func (s *Service) setStatus(ctx context.Context, tagID, userID, status string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE tags SET status=$3
		WHERE id=$1 AND tagged_user_id=$2
	`, tagID, userID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotTagged
	}
	return nil
}

// Remove deletes a tag. Only the item owner may remove tags.
func (s *Service) Remove(ctx context.Context, tagID, requesterID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM tags
		USING events
		WHERE tags.id=$1 AND events.id=tags.item_id AND events.owner_id=$2
	`, tagID, requesterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

// ListForItem returns every well-formed tag on an item.
func (s *Service) ListForItem(ctx context.Context, itemID string) ([]Tag, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, item_id, tagged_user_id, tagged_profile_id, tagged_by_id, status, created_at
		FROM tags WHERE item_id=$1
		ORDER BY created_at
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var userID, profileID *string
		if err := rows.Scan(&t.ID, &t.ItemID, &userID, &profileID, &t.TaggedByID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		subject, ok := subjectFromRow(userID, profileID)
		if !ok {
			continue
		}
		t.Subject = subject
		tags = append(tags, t)
	}
	return tags, nil
}

// AcceptedUserTags returns the user ids accepted-tagged on an item.
// Placeholder-profile tags are excluded: they grant no visibility.
func (s *Service) AcceptedUserTags(ctx context.Context, itemID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT tagged_user_id FROM tags
		WHERE item_id=$1 AND status='accepted'
		  AND tagged_user_id IS NOT NULL AND tagged_profile_id IS NULL
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}

// AcceptedUserTagsForItems is the bulk form of AcceptedUserTags.
func (s *Service) AcceptedUserTagsForItems(ctx context.Context, itemIDs []string) (map[string][]string, error) {
	if len(itemIDs) == 0 {
		return map[string][]string{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT item_id, tagged_user_id FROM tags
		WHERE item_id = ANY($1) AND status='accepted'
		  AND tagged_user_id IS NOT NULL AND tagged_profile_id IS NULL
	`, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := map[string][]string{}
	for rows.Next() {
		var itemID, userID string
		if err := rows.Scan(&itemID, &userID); err != nil {
			return nil, err
		}
		tags[itemID] = append(tags[itemID], userID)
	}
	return tags, nil
}
