package assignments

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/audit"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/httpx"
)

// Recorder appends audit entries after successful mutations.
type Recorder interface {
	Record(ctx context.Context, p authz.Principal, e audit.Entry)
}

// Handler manages property assignment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	auditor   Recorder
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auditor Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, auditor: auditor, validator: validator.New()}
}

// MountRoutes registers assignment routes. Admin-only subtree.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(authz.ActionReadGlobal))
		r.Get("/users/{id}", h.listForUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(authz.ActionWriteGlobal))
		r.Post("/", h.assign)
		r.Delete("/users/{id}/properties/{propertyID}", h.unassign)
	})
}

type assignmentResponse struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type assignRequest struct {
	UserID     int64 `json:"user_id" validate:"required,gt=0"`
	PropertyID int64 `json:"property_id" validate:"required,gt=0"`
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err), slog.Int64("user_id", userID))
		httpx.RespondError(w, err)
		return
	}
	responses := make([]assignmentResponse, 0, len(list))
	for _, a := range list {
		responses = append(responses, assignmentResponse{UserID: a.UserID, PropertyID: a.PropertyID, CreatedAt: a.CreatedAt})
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Assign(r.Context(), req.UserID, req.PropertyID)
	if err != nil {
		h.logger.Error("assign property", slog.Any("error", err),
			slog.Int64("user_id", req.UserID), slog.Int64("property_id", req.PropertyID))
		httpx.RespondError(w, err)
		return
	}
	// A repeated pair is a silent success with no audit trail noise.
	if created {
		h.record(r, audit.ActionAssignProperty, req.UserID, req.PropertyID)
	}
	httpx.JSON(w, http.StatusCreated, assignmentResponse{UserID: req.UserID, PropertyID: req.PropertyID})
}

func (h *Handler) unassign(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	propertyID, ok := h.pathID(w, r, "propertyID")
	if !ok {
		return
	}
	if err := h.service.Unassign(r.Context(), userID, propertyID); err != nil {
		h.logger.Error("unassign property", slog.Any("error", err),
			slog.Int64("user_id", userID), slog.Int64("property_id", propertyID))
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionUnassignProperty, userID, propertyID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) record(r *http.Request, action string, userID, propertyID int64) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		return
	}
	ip, ua := audit.RequestMeta(r)
	h.auditor.Record(r.Context(), principal, audit.Entry{
		Action:    action,
		Entity:    audit.EntityAssignment,
		EntityID:  fmt.Sprintf("%d:%d", userID, propertyID),
		Details:   map[string]any{"user_id": userID, "property_id": propertyID},
		IP:        ip,
		UserAgent: ua,
	})
}
