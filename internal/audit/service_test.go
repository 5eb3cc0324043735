package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
	_ "github.com/taskdeck/taskdeck/testing"
)

type fakeLogStore struct {
	events  []audit.Event
	err     error
	filters audit.Filters
}

func (f *fakeLogStore) Insert(ctx context.Context, event audit.Event) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLogStore) ListWindow(ctx context.Context, filters audit.Filters) ([]audit.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.filters = filters
	start := filters.OffsetRows
	if start > len(f.events) {
		start = len(f.events)
	}
	end := start + filters.LimitRows
	if end > len(f.events) {
		end = len(f.events)
	}
	return f.events[start:end], nil
}

func seededStore(n int) *fakeLogStore {
	store := &fakeLogStore{}
	for i := 0; i < n; i++ {
		store.events = append(store.events, audit.Event{
			ID:      fmt.Sprintf("e%d", i),
			Level:   audit.LevelInfo,
			Message: "Task created",
		})
	}
	return store
}

func TestTimelinePaging(t *testing.T) {
	store := seededStore(45)
	svc := audit.NewService(store)

	result, err := svc.Timeline(context.Background(), audit.TimelineFilters{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 || result.Paging.PrevPage != 0 {
		t.Fatalf("unexpected paging %+v", result.Paging)
	}

	result, err = svc.Timeline(context.Background(), audit.TimelineFilters{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 5 {
		t.Fatalf("expected 5 rows on the last page, got %d", len(result.Rows))
	}
	if result.Paging.HasNext || result.Paging.PrevPage != 2 {
		t.Fatalf("unexpected paging %+v", result.Paging)
	}
}

func TestTimelinePageSizeBounds(t *testing.T) {
	store := seededStore(120)
	svc := audit.NewService(store)

	result, err := svc.Timeline(context.Background(), audit.TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.PageSize != 20 {
		t.Fatalf("expected default page size 20, got %d", result.Paging.PageSize)
	}

	result, err = svc.Timeline(context.Background(), audit.TimelineFilters{PageSize: 500})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.PageSize != 50 || len(result.Rows) != 50 {
		t.Fatalf("expected page size clamped to 50, got %+v", result.Paging)
	}
}

func TestTimelineRejectsUnknownLevel(t *testing.T) {
	svc := audit.NewService(seededStore(1))

	_, err := svc.Timeline(context.Background(), audit.TimelineFilters{Level: audit.Level("debug")})
	var verr *shared.ValidationError
	if !errors.As(err, &verr) || verr.Field != "level" {
		t.Fatalf("expected level validation error, got %v", err)
	}
}

func TestTimelinePassesFiltersThrough(t *testing.T) {
	store := seededStore(5)
	svc := audit.NewService(store)

	_, err := svc.Timeline(context.Background(), audit.TimelineFilters{
		Level:  audit.LevelSecurity,
		UserID: "u1",
		Page:   2,
	})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if store.filters.Level != audit.LevelSecurity || store.filters.UserID != "u1" {
		t.Fatalf("filters not forwarded: %+v", store.filters)
	}
	if store.filters.OffsetRows != 20 || store.filters.LimitRows != 21 {
		t.Fatalf("unexpected window %+v", store.filters)
	}
}

func TestTimelineStoreFailure(t *testing.T) {
	svc := audit.NewService(&fakeLogStore{err: errors.New("query failed")})

	if _, err := svc.Timeline(context.Background(), audit.TimelineFilters{}); err == nil {
		t.Fatalf("expected store error")
	}
}
