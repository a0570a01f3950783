package follow

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func testApp(t *testing.T, mock pgxmock.PgxPoolIface) *fiber.App {
	t.Helper()
	app := fiber.New()
	var svc *Service
	if mock != nil {
		svc = NewService(mock)
	} else {
		svc = NewService(nil)
	}
	asBob := func(c *fiber.Ctx) error {
		c.Locals("user_id", "bob")
		return c.Next()
	}
	RegisterRoutes(app.Group("/follows"), svc, asBob)
	return app
}

func TestFollowHandlers(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO follow_edges`).
		WithArgs("bob", "alice").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE follow_edges SET status='accepted'`).
		WithArgs("carol", "bob").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE follow_edges SET is_close_family`).
		WithArgs("carol", "bob", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT follower_id, followee_id, status, is_close_family, created_at`).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"follower_id", "followee_id", "status", "is_close_family", "created_at"}).
			AddRow("dave", "bob", "pending", false, time.Now()))

	app := testApp(t, mock)

	body, _ := json.Marshal(map[string]string{"followee_id": "alice"})
	req := httptest.NewRequest(http.MethodPost, "/follows/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("request follow status: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/follows/carol/accept", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("accept status: %v", err)
	}

	cfBody, _ := json.Marshal(map[string]bool{"is_close_family": true})
	req = httptest.NewRequest(http.MethodPut, "/follows/carol/close-family", bytes.NewReader(cfBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close family status: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/follows/requests", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("requests status: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFollowHandlersBadRequest(t *testing.T) {
	app := testApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/follows/", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestFollowHandlersSelfFollow(t *testing.T) {
	app := testApp(t, nil)

	body, _ := json.Marshal(map[string]string{"followee_id": "bob"})
	req := httptest.NewRequest(http.MethodPost, "/follows/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for self follow")
	}
}

func TestFollowHandlersAcceptMissing(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE follow_edges SET status='accepted'`).
		WithArgs("carol", "bob").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	app := testApp(t, mock)
	req := httptest.NewRequest(http.MethodPost, "/follows/carol/accept", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found for missing request")
	}
}
