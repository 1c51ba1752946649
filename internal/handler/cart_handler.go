package handler

import (
	"net/http"
	"strconv"

	"supply-cart/internal/model"
	"supply-cart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader carries an optional client token for submissions.
const IdempotencyKeyHeader = "Idempotency-Key"

const cartUnavailableWarning = "The cart could not be loaded right now. Showing an empty cart."

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	carts       service.CartService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, submissions service.SubmissionService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:       carts,
		submissions: submissions,
		logger:      logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests. A store failure renders an empty cart
// with a warning.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.carts.LoadCart(r.Context(), user.Username)
	resp := model.NewCartResponse(items)
	if err != nil {
		if !model.IsBackend(err) {
			writeServiceError(w, err, h.logger)
			return
		}
		resp.Warning = cartUnavailableWarning
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var input model.CartItemInput
	if !decodeJSON(w, r, &input, h.logger) {
		return
	}

	item, err := h.carts.AddItem(r.Context(), user.Username, input)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// RemoveItem handles DELETE /api/cart/items/{index} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "index must be an integer",
			Field:   "index",
		}, h.logger)
		return
	}

	if err := h.carts.RemoveItem(r.Context(), user.Username, index); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(r.Context(), user.Username); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/cart/submit requests. The current cart is the
// snapshot being submitted.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	snapshot, err := h.carts.LoadCart(r.Context(), user.Username)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	batch, err := h.submissions.SubmitCart(r.Context(), user.Username, snapshot, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, batch)
}
