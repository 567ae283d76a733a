package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/audit"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/httpx"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	auditor        Recorder
	validator      *validator.Validate
}

// Recorder appends audit entries for login and logout events.
type Recorder interface {
	Record(ctx context.Context, p authz.Principal, e audit.Entry)
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, auditor Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		auditor:        auditor,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router. Logout resolves the
// principal first so the audit entry carries the actor.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Post("/login", h.handleLogin)
	r.Get("/csrf", h.handleCSRF)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequirePrincipal)
		r.Post("/logout", h.handleLogout)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CSRFToken string `json:"csrf_token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// Generic rejection: field detail would leak password policy to probes.
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	ip, ua := audit.RequestMeta(r)
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, ip, ua); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	principal := principalOf(user)
	h.auditor.Record(r.Context(), principal, audit.Entry{
		Action:    audit.ActionLogin,
		Entity:    audit.EntitySession,
		EntityID:  sess.ID,
		IP:        ip,
		UserAgent: ua,
	})

	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Warn("issue csrf token", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		CSRFToken: token,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if principal, ok := authz.PrincipalFromContext(r.Context()); ok {
			ip, ua := audit.RequestMeta(r)
			h.auditor.Record(r.Context(), principal, audit.Entry{
				Action:    audit.ActionLogout,
				Entity:    audit.EntitySession,
				EntityID:  sess.ID,
				IP:        ip,
				UserAgent: ua,
			})
		}
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCSRF hands the session's token to clients that lost theirs, e.g.
// after a page reload.
func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func principalOf(user users.User) authz.Principal {
	return authz.Principal{ID: user.ID, Username: user.Username, Role: authz.ParseRole(user.Role)}
}
