package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-pos/auth"
	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/services"
	"github.com/diewo77/go-pos/validation"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	admins *services.AdminService
	tokens *auth.TokenManager
}

func NewAuthHandler(admins *services.AdminService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{admins: admins, tokens: tokens}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	a, err := h.admins.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Uint("admin_id", a.ID).Msg("admin registered")
	httpx.JSON(w, http.StatusCreated, a)
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		fail(w, r, http.StatusBadRequest, services.CodeValidationFailed, v)
		return
	}

	a, err := h.admins.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, exp, err := h.tokens.Issue(a.ID, a.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, Name: a.Name, Email: a.Email})
}

// Me returns the admin behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AdminIDFromContext(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	a, err := h.admins.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}
