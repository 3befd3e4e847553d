package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"trainpulse/internal/analytics"
	"trainpulse/internal/dataprocessing"
	apierrors "trainpulse/internal/errors"
	"trainpulse/internal/services"
	"trainpulse/internal/sheets"
)

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDashboard)
	r.Get("/filters", h.GetFilters)
	r.Post("/refresh", h.Refresh)

	return r
}

// GetDashboard handles GET /api/dashboard?year=&city=&city=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r, h.service)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Dashboard(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"stale":  h.service.Status(r.Context()).Stale,
		"data":   snap,
	})
}

// GetFilters handles GET /api/dashboard/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Filters(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
	})
}

// Refresh handles POST /api/dashboard/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	force := r.URL.Query().Get("force") == "true"

	h.logger.InfoContext(r.Context(), "refresh requested",
		slog.String("request_id", reqID),
		slog.Bool("force", force),
	)

	result, err := h.service.Refresh(r.Context(), force)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// handleServiceError maps service and pipeline errors to API errors.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, mapServiceError(err, h.service.HasData()))
}

// parseFilter extracts the year and city query parameters. A missing
// year falls back to the most recent year with data.
func parseFilter(r *http.Request, service DashboardServiceInterface) (analytics.Filter, error) {
	var filter analytics.Filter

	q := r.URL.Query()
	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return filter, apierrors.ErrValidation("year", fmt.Sprintf("invalid year: %q", yearStr))
		}
		filter.Year = year
	} else {
		opts, err := service.Filters(r.Context())
		if err != nil {
			return filter, err
		}
		filter.Year = opts.DefaultYear
	}

	filter.Cities = q["city"]
	return filter, nil
}

// mapServiceError translates service and pipeline errors to API errors.
// hasData marks source failures where a previous dataset is still being
// served.
func mapServiceError(err error, hasData bool) error {
	var schemaErr *dataprocessing.SchemaError

	switch {
	case errors.Is(err, services.ErrNotRefreshed):
		return apierrors.New(
			http.StatusServiceUnavailable,
			"NOT_REFRESHED",
			"Dashboard data has not been loaded yet",
		)
	case errors.Is(err, services.ErrYearNotAvailable):
		return apierrors.ErrValidation("year", err.Error())
	case errors.Is(err, services.ErrCityNotAvailable):
		return apierrors.ErrValidation("city", err.Error())
	case errors.Is(err, services.ErrEmptyDataset):
		return apierrors.New(
			http.StatusBadGateway,
			"EMPTY_DATASET",
			"Source tables contained no usable order rows",
		)
	case errors.As(err, &schemaErr):
		return apierrors.SchemaMismatchError(err)
	case errors.Is(err, sheets.ErrSourceUnavailable):
		return apierrors.SourceUnavailableError(err, hasData)
	default:
		return err
	}
}
