package vehicles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/audit"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/httpx"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// Recorder appends audit entries after successful mutations.
type Recorder interface {
	Record(ctx context.Context, p authz.Principal, e audit.Entry)
}

// Handler manages vehicle endpoints.
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

// MountRoutes registers vehicle routes. No role gate here: scoped decisions
// depend on the target row's property, so the service checks each call.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type vehicleRequest struct {
	PropertyID   int64  `json:"property_id" validate:"required,gt=0"`
	LicensePlate string `json:"license_plate" validate:"required,max=16"`
	Make         string `json:"make" validate:"max=64"`
	Model        string `json:"model" validate:"max=64"`
	Color        string `json:"color" validate:"max=32"`
	OwnerName    string `json:"owner_name" validate:"max=128"`
	UnitNumber   string `json:"unit_number" validate:"max=32"`
	Status       string `json:"status" validate:"required,oneof=active inactive flagged"`
	Notes        string `json:"notes" validate:"max=1024"`
}

func (req vehicleRequest) toVehicle(id int64) Vehicle {
	return Vehicle{
		ID:           id,
		PropertyID:   req.PropertyID,
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		Make:         req.Make,
		Model:        req.Model,
		Color:        req.Color,
		OwnerName:    req.OwnerName,
		UnitNumber:   req.UnitNumber,
		Status:       req.Status,
		Notes:        req.Notes,
	}
}

type listResponse struct {
	Vehicles   []Vehicle         `json:"vehicles"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	filters := parseListFilters(r)
	result, paging, err := h.service.List(r.Context(), principal, filters)
	if err != nil {
		h.logger.Error("list vehicles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Vehicles: result.Vehicles, Pagination: paging})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	vehicle, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicle)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	vehicle, err := h.service.Create(r.Context(), principal, req.toVehicle(0))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionCreateVehicle, vehicle, map[string]any{
		"license_plate": vehicle.LicensePlate,
		"property_id":   vehicle.PropertyID,
	})
	httpx.JSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	vehicle, changes, err := h.service.Update(r.Context(), principal, req.toVehicle(id))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionUpdateVehicle, vehicle, changes)
	httpx.JSON(w, http.StatusOK, vehicle)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	vehicle, err := h.service.Delete(r.Context(), principal, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.record(r, audit.ActionDeleteVehicle, vehicle, map[string]any{
		"license_plate": vehicle.LicensePlate,
		"property_id":   vehicle.PropertyID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (vehicleRequest, bool) {
	var req vehicleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return vehicleRequest{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return vehicleRequest{}, false
	}
	return req, true
}

func (h *Handler) principalAndID(w http.ResponseWriter, r *http.Request) (authz.Principal, int64, bool) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return authz.Principal{}, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", "invalid vehicle ID")
		return authz.Principal{}, 0, false
	}
	return principal, id, true
}

func parseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Search: strings.TrimSpace(q.Get("search")),
		Status: q.Get("status"),
	}
	for _, raw := range q["property_id"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filters.PropertyIDs = append(filters.PropertyIDs, id)
		}
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = page
	}
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil {
		filters.PerPage = perPage
	}
	return filters
}

func (h *Handler) record(r *http.Request, action string, vehicle Vehicle, details map[string]any) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		return
	}
	ip, ua := audit.RequestMeta(r)
	h.auditor.Record(r.Context(), principal, audit.Entry{
		Action:    action,
		Entity:    audit.EntityVehicle,
		EntityID:  strconv.FormatInt(vehicle.ID, 10),
		Details:   details,
		IP:        ip,
		UserAgent: ua,
	})
}
