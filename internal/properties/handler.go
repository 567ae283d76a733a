package properties

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
)

// Recorder appends audit entries after successful mutations.
type Recorder interface {
	Record(ctx context.Context, p authz.Principal, e audit.Entry)
}

// Handler manages property endpoints.
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

// MountRoutes registers property routes. Reads are scope-filtered per
// principal; property administration is a global write.
func (h *Handler) MountRoutes(r chi.Router, mw authz.Middleware) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(authz.ActionWriteGlobal))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type propertyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(property Property) propertyResponse {
	return propertyResponse{
		ID:        property.ID,
		Name:      property.Name,
		Address:   property.Address,
		CreatedAt: property.CreatedAt,
		UpdatedAt: property.UpdatedAt,
	}
}

type propertyRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Address string `json:"address" validate:"max=256"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	list, err := h.service.ListVisible(r.Context(), principal)
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	responses := make([]propertyResponse, 0, len(list))
	for _, property := range list {
		responses = append(responses, toResponse(property))
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	property, err := h.service.GetVisible(r.Context(), principal, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(property))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	property, err := h.service.Create(r.Context(), req.Name, req.Address)
	if err != nil {
		h.logger.Error("create property", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionCreateProperty, property.ID, map[string]any{"name": property.Name})
	httpx.JSON(w, http.StatusCreated, toResponse(property))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var req propertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	property, err := h.service.Update(r.Context(), id, req.Name, req.Address)
	if err != nil {
		h.logger.Error("update property", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionUpdateProperty, property.ID, map[string]any{"name": property.Name})
	httpx.JSON(w, http.StatusOK, toResponse(property))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	property, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("delete property", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionDeleteProperty, id, map[string]any{"name": property.Name})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid property ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) record(r *http.Request, action string, entityID int64, details map[string]any) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		return
	}
	ip, ua := audit.RequestMeta(r)
	h.auditor.Record(r.Context(), principal, audit.Entry{
		Action:    action,
		Entity:    audit.EntityProperty,
		EntityID:  strconv.FormatInt(entityID, 10),
		Details:   details,
		IP:        ip,
		UserAgent: ua,
	})
}
