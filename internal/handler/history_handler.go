package handler

import (
	"net/http"

	"supply-cart/internal/model"
	"supply-cart/internal/service"

	"github.com/rs/zerolog"
)

const historyUnavailableWarning = "Submission history could not be loaded right now."

// HistoryHandler handles submission history HTTP requests.
type HistoryHandler struct {
	service service.HistoryService
	logger  zerolog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(service service.HistoryService, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "history").Logger(),
	}
}

// Mine handles GET /api/history requests.
func (h *HistoryHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	batches, err := h.service.GetHistory(r.Context(), user.Username)
	h.render(w, batches, err)
}

// All handles GET /api/admin/history requests.
func (h *HistoryHandler) All(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.GetAllHistory(r.Context())
	h.render(w, batches, err)
}

func (h *HistoryHandler) render(w http.ResponseWriter, batches []model.Batch, err error) {
	if batches == nil {
		batches = []model.Batch{}
	}
	resp := model.HistoryResponse{Batches: batches}

	if err != nil {
		if !model.IsBackend(err) {
			writeServiceError(w, err, h.logger)
			return
		}
		resp.Warning = historyUnavailableWarning
	}

	writeJSON(w, http.StatusOK, resp)
}
