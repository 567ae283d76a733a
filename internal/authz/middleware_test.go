package authz_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
)

type staticPropertySource struct{ ids []int64 }

func (s staticPropertySource) ListPropertyIDs(ctx context.Context) ([]int64, error) {
	return s.ids, nil
}

type staticAssignmentSource struct{ byUser map[int64][]int64 }

func (s staticAssignmentSource) PropertyIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.byUser[userID], nil
}

func newMiddleware(accounts *stubAccounts) authz.Middleware {
	engine := authz.NewEngine(authz.NewScopeResolver(
		staticPropertySource{ids: []int64{1}},
		staticAssignmentSource{byUser: map[int64][]int64{}},
	))
	return authz.Middleware{
		Resolver: authz.NewPrincipalResolver(accounts),
		Engine:   engine,
	}
}

func okHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestRequirePrincipalRejectsAnonymous(t *testing.T) {
	mw := newMiddleware(&stubAccounts{})
	reached := false
	handler := mw.RequirePrincipal(okHandler(&reached))

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if reached {
		t.Fatalf("handler must not run for anonymous request")
	}
	body := decodeErrorBody(t, rec)
	if body["error"] != "Unauthorized" {
		t.Fatalf("unexpected error label: %v", body)
	}
}

func TestRequirePrincipalAttachesPrincipal(t *testing.T) {
	accounts := &stubAccounts{byID: map[int64]authz.Account{
		3: {ID: 3, Username: "frontdesk", Role: "operator", IsActive: true},
	}}
	mw := newMiddleware(accounts)

	var seen authz.Principal
	handler := mw.RequirePrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = authz.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	req = req.WithContext(sessionContext(t, "3"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen.Username != "frontdesk" || seen.Role != authz.RoleOperator {
		t.Fatalf("unexpected principal in context: %+v", seen)
	}
}

func TestRequireDeniesGlobalWritesToOperator(t *testing.T) {
	accounts := &stubAccounts{byID: map[int64]authz.Account{
		3: {ID: 3, Username: "frontdesk", Role: "operator", IsActive: true},
	}}
	mw := newMiddleware(accounts)
	reached := false
	handler := mw.RequirePrincipal(mw.Require(authz.ActionWriteGlobal)(okHandler(&reached)))

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req = req.WithContext(sessionContext(t, "3"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if reached {
		t.Fatalf("handler must not run after denial")
	}
	body := decodeErrorBody(t, rec)
	if body["error"] != "Forbidden" || body["message"] != authz.ReasonAdminRequired {
		t.Fatalf("unexpected denial body: %v", body)
	}
}

func TestRequireAllowsAdmin(t *testing.T) {
	accounts := &stubAccounts{byID: map[int64]authz.Account{
		1: {ID: 1, Username: "manager", Role: "admin", IsActive: true},
	}}
	mw := newMiddleware(accounts)
	reached := false
	handler := mw.RequirePrincipal(mw.Require(authz.ActionWriteGlobal)(okHandler(&reached)))

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req = req.WithContext(sessionContext(t, "1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || !reached {
		t.Fatalf("expected handler to run for admin, code=%d reached=%v", rec.Code, reached)
	}
}
