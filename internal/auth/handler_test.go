package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/audit"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/users"
	_ "github.com/bfauber71/MyParkingMgr-sub002/testing"
)

type stubCredentials map[string]users.User

func (s stubCredentials) FindByUsername(ctx context.Context, username string) (users.User, error) {
	user, ok := s[username]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return user, nil
}

type stubSessionRepo struct {
	created map[string]int64
	deleted []string
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{created: map[string]int64{}}
}

func (s *stubSessionRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.created[id] = userID
	return nil
}

func (s *stubSessionRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.created, id)
	return nil
}

func (s *stubSessionRepo) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type capturingRecorder struct {
	entries    []audit.Entry
	principals []authz.Principal
}

func (c *capturingRecorder) Record(ctx context.Context, p authz.Principal, e audit.Entry) {
	c.principals = append(c.principals, p)
	c.entries = append(c.entries, e)
}

type loginFixture struct {
	handler  *Handler
	repo     *stubSessionRepo
	recorder *capturingRecorder
	manager  *shared.SessionManager
}

func newLoginFixture(t *testing.T, accounts stubCredentials) loginFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	repo := newStubSessionRepo()
	recorder := &capturingRecorder{}
	service := NewService(accounts, repo)
	handler := NewHandler(nil, service, manager, shared.NewCSRFManager("csrf-secret"), recorder)
	return loginFixture{handler: handler, repo: repo, recorder: recorder, manager: manager}
}

func hash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func loginWith(t *testing.T, fx loginFixture, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := fx.manager.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	fx.handler.handleLogin(rec, req)
	require.NoError(t, fx.manager.Commit(req.Context(), rec, req, sess))
	return rec
}

func TestLoginSuccess(t *testing.T) {
	fx := newLoginFixture(t, stubCredentials{
		"manager": {ID: 42, Username: "manager", Name: "Site Manager", Role: "admin",
			PasswordHash: hash(t, "opensesame1"), IsActive: true},
	})

	rec := loginWith(t, fx, `{"username":"manager","password":"opensesame1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "admin", resp.Role)
	assert.NotEmpty(t, resp.CSRFToken)

	setCookie := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, setCookie)
	assert.True(t, strings.HasPrefix(setCookie, fx.manager.CookieName()+"="))

	assert.Len(t, fx.repo.created, 1)
	require.Len(t, fx.recorder.entries, 1)
	assert.Equal(t, audit.ActionLogin, fx.recorder.entries[0].Action)
	assert.Equal(t, audit.EntitySession, fx.recorder.entries[0].Entity)
	assert.Equal(t, int64(42), fx.recorder.principals[0].ID)
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newLoginFixture(t, stubCredentials{
		"manager": {ID: 42, Username: "manager", Role: "admin",
			PasswordHash: hash(t, "opensesame1"), IsActive: true},
	})

	rec := loginWith(t, fx, `{"username":"manager","password":"wrongwrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, fx.recorder.entries, "failed login must not write audit entries")
	assert.Empty(t, fx.repo.created)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	fx := newLoginFixture(t, stubCredentials{})

	rec := loginWith(t, fx, `{"username":"nobody99","password":"whatever123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid username or password", body["message"])
}

func TestLoginInactiveAccount(t *testing.T) {
	fx := newLoginFixture(t, stubCredentials{
		"retired": {ID: 9, Username: "retired", Role: "operator",
			PasswordHash: hash(t, "opensesame1"), IsActive: false},
	})

	rec := loginWith(t, fx, `{"username":"retired","password":"opensesame1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	fx := newLoginFixture(t, stubCredentials{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	sess, err := fx.manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("42")
	fx.repo.created[sess.ID] = 42

	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = authz.ContextWithPrincipal(ctx, authz.Principal{ID: 42, Username: "manager", Role: authz.RoleAdmin})
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	fx.handler.handleLogout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, fx.repo.deleted, sess.ID)
	require.Len(t, fx.recorder.entries, 1)
	assert.Equal(t, audit.ActionLogout, fx.recorder.entries[0].Action)
}
