package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-kinfolk/internal/visibility"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func eventRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "owner_id", "title", "description", "privacy_tier",
		"custom_group_id", "is_published", "created_at", "updated_at",
	})
}

func TestCreateEvent(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(pgxmock.AnyArg(), "alice", "picnic", "", visibility.TierFollowers, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	svc := NewService(mock)
	ev, err := svc.Create(context.Background(), "alice", "picnic", "", visibility.TierFollowers, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.OwnerID != "alice" || ev.PrivacyTier != visibility.TierFollowers {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestCreateClearsGroupForNonGroupTier(t *testing.T) {
	mock := newMock(t)
	// Group id sent with a followers tier is dropped before the insert.
	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(pgxmock.AnyArg(), "alice", "picnic", "", visibility.TierFollowers, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	svc := NewService(mock)
	ev, err := svc.Create(context.Background(), "alice", "picnic", "", visibility.TierFollowers, "grp-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.CustomGroupID != "" {
		t.Fatalf("expected group id cleared, got %q", ev.CustomGroupID)
	}
}

func TestCreateCustomGroupNeedsGroupID(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Create(context.Background(), "alice", "picnic", "", visibility.TierCustomGroup, ""); !errors.Is(err, ErrGroupRequired) {
		t.Fatalf("expected ErrGroupRequired, got %v", err)
	}
}

func TestCreateUnknownTier(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Create(context.Background(), "alice", "picnic", "", "friends_of_friends", ""); !errors.Is(err, ErrUnknownTier) {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}

func TestGetMissingOrDeleted(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, owner_id, title`).
		WithArgs("ev-1").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock)
	_, found, err := svc.Get(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
}

func TestUpdateTierNotOwner(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE events SET privacy_tier`).
		WithArgs(visibility.TierPrivate, "", "ev-1", "mallory").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	svc := NewService(mock)
	if err := svc.UpdateTier(context.Background(), "mallory", "ev-1", visibility.TierPrivate, ""); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestUpdateTierCustomGroup(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE events SET privacy_tier`).
		WithArgs(visibility.TierCustomGroup, "grp-1", "ev-1", "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	if err := svc.UpdateTier(context.Background(), "alice", "ev-1", visibility.TierCustomGroup, "grp-1"); err != nil {
		t.Fatalf("update tier: %v", err)
	}
}

func TestPublishAndSoftDelete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE events SET is_published=true`).
		WithArgs("ev-1", "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE events SET is_deleted=true`).
		WithArgs("ev-1", "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	if err := svc.Publish(context.Background(), "alice", "ev-1"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := svc.SoftDelete(context.Background(), "alice", "ev-1"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
}

func TestCandidatesForFeed(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, owner_id, title`).
		WithArgs(50).
		WillReturnRows(eventRows().
			AddRow("ev-2", "bob", "newer", "", visibility.Tier("public"), "", true, now, now).
			AddRow("ev-1", "alice", "older", "", visibility.Tier("private"), "", true, now.Add(-time.Hour), now))

	svc := NewService(mock)
	events, err := svc.CandidatesForFeed(context.Background(), 50)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(events) != 2 || events[0].ID != "ev-2" {
		t.Fatalf("unexpected candidates: %+v", events)
	}
}
