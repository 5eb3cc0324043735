package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

// Handler serves the admin log viewer feed.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers log viewer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listLogs)
}

type timelineResponse struct {
	Rows   []Event    `json:"rows"`
	Paging PagingInfo `json:"paging"`
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := TimelineFilters{
		Level:  Level(query.Get("level")),
		UserID: query.Get("user_id"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		filters.Page = page
	}
	if size, err := strconv.Atoi(query.Get("page_size")); err == nil {
		filters.PageSize = size
	}
	if from, err := time.Parse(time.RFC3339, query.Get("from")); err == nil {
		filters.From = from
	}
	if to, err := time.Parse(time.RFC3339, query.Get("to")); err == nil {
		filters.To = to
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("list logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{Rows: result.Rows, Paging: result.Paging})
}
