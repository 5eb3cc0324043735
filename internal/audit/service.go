package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// TimelineFilters carries viewer query parameters.
type TimelineFilters struct {
	Level    Level
	UserID   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// PagingInfo describes the window returned by Timeline.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []Event
	Paging PagingInfo
}

// Service coordinates read access for the log viewer.
type Service struct {
	repo Repository
}

// NewService creates a log viewer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline fetches log events with paging, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	if filters.Level != "" && !filters.Level.Valid() {
		return Result{}, &shared.ValidationError{Field: "level", Reason: "unknown log level"}
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
	rows, err := s.repo.ListWindow(ctx, Filters{
		Level:      filters.Level,
		UserID:     filters.UserID,
		From:       filters.From,
		To:         filters.To,
		OffsetRows: offset,
		LimitRows:  pageSize + 1,
	})
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
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
