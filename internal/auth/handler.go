package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumapix/service/internal/middleware"
	"github.com/lumapix/service/internal/response"
	"github.com/lumapix/service/internal/user"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc     *Service
	userSvc *user.Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, userSvc *user.Service) *Handler {
	return &Handler{svc: svc, userSvc: userSvc}
}

type loginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"password"`
}

type userBody struct {
	ID       string `json:"id"       example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	Username string `json:"username" example:"admin"`
	Email    string `json:"email"    example:"admin@example.com"`
}

type loginData struct {
	Token string   `json:"token" example:"eyJhbGci..."`
	User  userBody `json:"user"`
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify username and password, returning a JWT bearer token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=loginData}
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
	if req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "username and password are required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, loginData{
		Token: token,
		User:  userBody{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Stateless logout: the client discards the token.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope
//	@Router			/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]bool{"loggedOut": true})
}

// Verify godoc
//
//	@Summary		Verify token
//	@Description	Returns the user the presented token belongs to.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=userBody}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/auth/verify [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.CallerID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.userSvc.GetByID(r.Context(), userID)
	if err != nil {
		if h.userSvc.IsNotFound(err) {
			response.NotFound(w, "USER_NOT_FOUND", "the token's user no longer exists")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, userBody{ID: u.ID, Username: u.Username, Email: u.Email})
}
