package follow

import (
	"context"
	"errors"

	"backend-kinfolk/internal/db"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrNoPendingRequest = errors.New("no pending follow request")
	ErrNotAccepted      = errors.New("edge is not accepted")
)

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// Request creates a pending edge. Re-requesting an existing edge is a no-op
// regardless of its status; a rejected follower does not get to spam.
func (s *Service) Request(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO follow_edges (follower_id, followee_id, status)
		VALUES ($1,$2,'pending')
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID)
	return err
}

// Accept transitions a pending edge. Only the followee may call this.
func (s *Service) Accept(ctx context.Context, followeeID, followerID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE follow_edges SET status='accepted'
		WHERE follower_id=$1 AND followee_id=$2 AND status='pending'
	`, followerID, followeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// Reject transitions a pending edge. Only the followee may call this.
func (s *Service) Reject(ctx context.Context, followeeID, followerID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE follow_edges SET status='rejected'
		WHERE follower_id=$1 AND followee_id=$2 AND status='pending'
	`, followerID, followeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// SetCloseFamily toggles the close-family flag on an accepted edge. Only
// the followee may call this; the flag is meaningless on other statuses.
func (s *Service) SetCloseFamily(ctx context.Context, followeeID, followerID string, closeFamily bool) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE follow_edges SET is_close_family=$3
		WHERE follower_id=$1 AND followee_id=$2 AND status='accepted'
	`, followerID, followeeID, closeFamily)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAccepted
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM follow_edges WHERE follower_id=$1 AND followee_id=$2
	`, followerID, followeeID)
	return err
}

func (s *Service) IsAcceptedFollower(ctx context.Context, followerID, followeeID string) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follow_edges
			WHERE follower_id=$1 AND followee_id=$2 AND status='accepted'
		)
	`, followerID, followeeID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Service) IsCloseFamilyFollower(ctx context.Context, followerID, followeeID string) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follow_edges
			WHERE follower_id=$1 AND followee_id=$2 AND status='accepted' AND is_close_family
		)
	`, followerID, followeeID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Service) PendingEdgeExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follow_edges
			WHERE follower_id=$1 AND followee_id=$2 AND status='pending'
		)
	`, followerID, followeeID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// AcceptedFollowees returns every followee the follower has an accepted
// edge to, mapped to the edge's close-family flag.
func (s *Service) AcceptedFollowees(ctx context.Context, followerID string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT followee_id, is_close_family
		FROM follow_edges
		WHERE follower_id=$1 AND status='accepted'
	`, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followees := map[string]bool{}
	for rows.Next() {
		var followeeID string
		var closeFamily bool
		if err := rows.Scan(&followeeID, &closeFamily); err != nil {
			return nil, err
		}
		followees[followeeID] = closeFamily
	}
	return followees, nil
}

// PendingRequests lists incoming requests awaiting the followee's decision.
func (s *Service) PendingRequests(ctx context.Context, followeeID string) ([]Edge, error) {
	rows, err := s.db.Query(ctx, `
		SELECT follower_id, followee_id, status, is_close_family, created_at
		FROM follow_edges
		WHERE followee_id=$1 AND status='pending'
		ORDER BY created_at
	`, followeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.FollowerID, &e.FolloweeID, &e.Status, &e.IsCloseFamily, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}
