package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"supply-cart/internal/middleware"
	"supply-cart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, status int, resp model.ErrorResponse, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", resp.Error).Str("message", resp.Message).Int("status", status).Msg("handler error")
	writeJSON(w, status, resp)
}

// writeServiceError maps a service error onto a status code and body.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: ve.Message,
			Field:   ve.Field,
		}, logger)
		return
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		status := http.StatusInternalServerError
		switch de.Code {
		case model.ErrCodeInvalidCredentials:
			status = http.StatusUnauthorized
		case model.ErrCodeForbidden:
			status = http.StatusForbidden
		case model.ErrCodeBatchNotFound:
			status = http.StatusNotFound
		case model.ErrCodeSubmissionInFlight, model.ErrCodeStaleCart, model.ErrCodeUserExists:
			status = http.StatusConflict
		}
		writeError(w, status, model.ErrorResponse{Error: de.Code, Message: de.Message}, logger)
		return
	}

	if model.IsBackend(err) {
		logger.Error().Err(err).Msg("backend failure")
		writeError(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeBackend,
			Message: "storage backend unavailable, please try again",
		}, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected error")
	writeError(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	}, logger)
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*model.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrorResponse{
			Error:   model.ErrCodeUnauthorised,
			Message: "missing credentials",
		}, logger)
		return nil, false
	}
	return user, true
}

// decodeJSON decodes the request body into dst or writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeInvalidJSON,
			Message: "invalid request body",
		}, logger)
		return false
	}
	return true
}
