package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"supply-cart/internal/model"
	"supply-cart/internal/service"

	"github.com/rs/zerolog"
)

// asciiDownloadName is offered to clients that ignore filename*.
const asciiDownloadName = "supply-requests.zip"

// ExportHandler handles administrator export requests.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("handler", "export").Logger(),
	}
}

// Create handles POST /api/admin/exports requests and streams the archive
// as an attachment.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ExportRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	archive, err := h.service.Export(r.Context(), req.BatchIDs)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(
		`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiDownloadName,
		url.PathEscape(archive.Name),
	))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(archive.Data); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write export archive")
	}
}
