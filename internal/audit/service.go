package audit

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Repository provides the read-only reporting queries over audit_logs.
type Repository interface {
	Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error)
	All(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error)
}

// Service coordinates audit timeline retrieval. Strictly read-only; writes go
// through Logger and nothing else.
type Service struct {
	repo  Repository
	title cases.Caser
}

// NewService builds a timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, title: cases.Title(language.English)}
}

// Timeline fetches one page of audit history.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.Window(ctx, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	for i := range rows {
		rows[i].ActionLabel = s.humanize(rows[i].Action)
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns the full filtered history without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	rows, err := s.repo.All(ctx, filters)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].ActionLabel = s.humanize(rows[i].Action)
	}
	return rows, nil
}

// humanize turns "delete_user" into "Delete User" for display and exports.
func (s *Service) humanize(action string) string {
	return s.title.String(strings.ReplaceAll(action, "_", " "))
}
