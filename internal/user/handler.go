package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dropshare/service/internal/middleware"
	"github.com/dropshare/service/internal/response"
)

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger}
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the currently authenticated user.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	switch {
	case errors.Is(err, ErrNotFound):
		// Token outlived its account.
		response.NotFound(w, "user not found")
	case err != nil:
		h.log.Error("get current user", "user_id", userID, "error", err)
		response.InternalError(w)
	default:
		response.OK(w, u)
	}
}
