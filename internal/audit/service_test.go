package audit

import (
	"context"
	"testing"
	"time"
)

type stubTimelineRepo struct {
	rows       []TimelineRow
	lastLimit  int
	lastOffset int
	lastFilter TimelineFilters
}

func (s *stubTimelineRepo) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	s.lastFilter = filters
	s.lastLimit = limit
	s.lastOffset = offset
	if limit > len(s.rows) {
		limit = len(s.rows)
	}
	return s.rows[:limit], nil
}

func (s *stubTimelineRepo) All(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	s.lastFilter = filters
	return s.rows, nil
}

func timelineRow(ts, actor, action string) TimelineRow {
	at, _ := time.Parse(time.RFC3339, ts)
	return TimelineRow{At: at, Actor: actor, Action: action, Entity: EntityVehicle, EntityID: "1"}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		timelineRow("2026-03-10T10:00:00Z", "manager", ActionUpdateVehicle),
		timelineRow("2026-03-09T09:00:00Z", "manager", ActionCreateVehicle),
		timelineRow("2026-03-08T08:00:00Z", "manager", ActionCreateVehicle),
	}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected next page, got %+v", result.Paging)
	}
	if repo.lastLimit != 3 || repo.lastOffset != 0 {
		t.Fatalf("expected limit 3 offset 0, got %d/%d", repo.lastLimit, repo.lastOffset)
	}
}

func TestServiceTimelineHumanizesActions(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		timelineRow("2026-03-10T10:00:00Z", "manager", ActionDeleteUser),
	}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Rows[0].ActionLabel != "Delete User" {
		t.Fatalf("expected humanized label, got %q", result.Rows[0].ActionLabel)
	}
}

func TestServiceExportReturnsAllRows(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		timelineRow("2026-03-10T10:00:00Z", "manager", ActionUpdateVehicle),
		timelineRow("2026-03-09T09:00:00Z", "operator", ActionLogin),
	}}
	svc := NewService(repo)

	rows, err := svc.Export(context.Background(), TimelineFilters{Actor: "manager"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if repo.lastFilter.Actor != "manager" {
		t.Fatalf("filter not passed through: %+v", repo.lastFilter)
	}
}
