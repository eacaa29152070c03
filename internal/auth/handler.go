package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dropshare/service/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger}
}

type signupRequest struct {
	Email    string  `json:"email"    example:"ada@example.com"`
	Password string  `json:"password" example:"correct-horse"`
	Name     *string `json:"name"     example:"Ada"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"ada@example.com"`
	Password string `json:"password" example:"correct-horse"`
}

// Signup godoc
//
//	@Summary		Create an account
//	@Description	Registers an email/password account and returns a JWT.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupRequest	true	"Account details"
//	@Success		201		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	sess, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
		response.BadRequest(w, err.Error())
		return
	case errors.Is(err, ErrEmailTaken):
		response.Conflict(w, err.Error())
		return
	case err != nil:
		h.log.Error("signup failed", "error", err)
		response.InternalError(w)
		return
	}

	response.Created(w, sess)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a JWT.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, err.Error())
		return
	}
	if err != nil {
		h.log.Error("login failed", "error", err)
		response.InternalError(w)
		return
	}

	response.OK(w, sess)
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Tokens are stateless; the client discards its token. Always succeeds.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Router			/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]bool{"success": true})
}
