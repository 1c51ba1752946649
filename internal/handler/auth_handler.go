package handler

import (
	"net/http"

	"supply-cart/internal/model"
	"supply-cart/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles session-related HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/login. Credentials were already checked by the
// auth middleware; this reports who the caller is.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.Info().Str("username", user.Username).Msg("login")

	writeJSON(w, http.StatusOK, model.SessionResponse{
		Username: user.Username,
		Name:     user.Name,
		IsAdmin:  h.service.IsAdmin(user.Username),
	})
}
