// Package audithttp exposes the read-only audit reporting endpoints.
package audithttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/audit"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/httpx"
)

const (
	defaultDateRange = 7 * 24 * time.Hour
	maxDateRangeDays = 90
)

// TimelineService defines the business contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error)
	Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error)
}

// Handler serves audit timeline requests.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
	now     func() time.Time
}

// NewHandler builds an audit handler.
func NewHandler(logger *slog.Logger, service TimelineService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if result.Rows == nil {
		result.Rows = []audit.TimelineRow{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("export audit timeline", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	csvBytes, err := audit.WriteCSV(rows)
	if err != nil {
		h.logger.Error("encode audit csv", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-trail.csv"`)
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) parseFilters(r *http.Request) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	filters := audit.TimelineFilters{
		Actor:  q.Get("actor"),
		Entity: q.Get("entity"),
		Action: q.Get("action"),
	}

	now := h.now()
	filters.To = now
	filters.From = now.Add(-defaultDateRange)
	var err error
	if raw := q.Get("from"); raw != "" {
		if filters.From, err = time.Parse("2006-01-02", raw); err != nil {
			return filters, fmt.Errorf("invalid from date %q", raw)
		}
	}
	if raw := q.Get("to"); raw != "" {
		if filters.To, err = time.Parse("2006-01-02", raw); err != nil {
			return filters, fmt.Errorf("invalid to date %q", raw)
		}
		filters.To = filters.To.Add(24*time.Hour - time.Nanosecond)
	}
	if filters.To.Before(filters.From) {
		return filters, fmt.Errorf("date range is inverted")
	}
	if filters.To.Sub(filters.From) > maxDateRangeDays*24*time.Hour {
		return filters, fmt.Errorf("date range exceeds %d days", maxDateRangeDays)
	}

	if raw := q.Get("page"); raw != "" {
		if filters.Page, err = strconv.Atoi(raw); err != nil || filters.Page < 1 {
			return filters, fmt.Errorf("invalid page %q", raw)
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if filters.PageSize, err = strconv.Atoi(raw); err != nil || filters.PageSize < 1 {
			return filters, fmt.Errorf("invalid page_size %q", raw)
		}
	}
	return filters, nil
}
