package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trainpulse/internal/analytics"
	apierrors "trainpulse/internal/errors"
	"trainpulse/internal/exporter"
)

// ExportHandler serves downloadable snapshot reports
type ExportHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/xlsx", h.ExportXLSX)
	r.Get("/csv", h.ExportCSV)
	return r
}

// ExportXLSX handles GET /api/export/xlsx?year=&city=
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	filename := exportFilename(snap.Filter.Year, "xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteSnapshotXLSX(w, snap); err != nil {
		// Headers are already sent; log and abandon the response.
		h.logger.ErrorContext(r.Context(), "xlsx export failed",
			slog.String("error", err.Error()),
			slog.String("filename", filename),
		)
	}
}

// ExportCSV handles GET /api/export/csv?year=&city=
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	filename := exportFilename(snap.Filter.Year, "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteSnapshotCSV(w, snap); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()),
			slog.String("filename", filename),
		)
	}
}

func (h *ExportHandler) snapshot(w http.ResponseWriter, r *http.Request) (*analytics.Snapshot, bool) {
	filter, err := parseFilter(r, h.service)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	s, err := h.service.Dashboard(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, h.service.HasData()))
		return nil, false
	}
	return s, true
}

func exportFilename(year int, ext string) string {
	return fmt.Sprintf("training-dashboard-%d-%s.%s", year, time.Now().UTC().Format("20060102"), ext)
}
