package handlers

import (
	"net/http"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/api/middleware"
	"github.com/dragomirurdov/AtrijumApi/internal/api/response"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	tr          *i18n.Translator
}

func NewAuthHandler(authService *service.AuthService, tr *i18n.Translator) *AuthHandler {
	return &AuthHandler{authService: authService, tr: tr}
}

type JWTResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthResponse struct {
	JWT  JWTResponse  `json:"jwt"`
	User UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionResponse struct {
	ID        string                   `json:"id"`
	Device    domain.DeviceFingerprint `json:"device"`
	UserAgent string                   `json:"userAgent,omitempty"`
	Client    map[string]interface{}   `json:"client,omitempty"`
	Current   bool                     `json:"current"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Count   *int64 `json:"count,omitempty"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Activated: u.IsActivated(),
		CreatedAt: u.CreatedAt,
	}
}

func toAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		JWT:  JWTResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
		User: toUserResponse(res.User),
	}
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, h.tr, middleware.GetLanguage(r.Context()), err)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	creds, err := validateSignup(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.authService.Signup(r.Context(), service.SignupInput{
		Email:     creds.Email,
		Password:  creds.Password,
		UserAgent: r.UserAgent(),
		Language:  middleware.GetLanguage(r.Context()),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	creds, err := validateLogin(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:     creds.Email,
		Password:  creds.Password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, toAuthResponse(result))
}

// Refresh reissues the token of the calling device. The device is taken
// from the request's User-Agent, so a token copied to another browser
// cannot be refreshed there.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		h.fail(w, r, domain.ErrMissingToken)
		return
	}

	result, err := h.authService.Refresh(r.Context(), session.User, session.Device)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		h.fail(w, r, domain.ErrMissingToken)
		return
	}

	count, err := h.authService.Logout(r.Context(), session.User, session.Device)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, SuccessResponse{Success: true, Count: &count})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		h.fail(w, r, domain.ErrMissingToken)
		return
	}

	count, err := h.authService.LogoutAll(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, SuccessResponse{Success: true, Count: &count})
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	secret, err := validateActivationSecret(chi.URLParam(r, "secret"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.authService.Activate(r.Context(), secret); err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		h.fail(w, r, domain.ErrMissingToken)
		return
	}

	response.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		h.fail(w, r, domain.ErrMissingToken)
		return
	}

	sessions, err := h.authService.Sessions(r.Context(), session.User)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, SessionResponse{
			ID:        s.ID.String(),
			Device:    s.Fingerprint(),
			UserAgent: s.UserAgent,
			Client:    s.Client,
			Current:   s.Token == session.Token,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	response.JSON(w, http.StatusOK, resp)
}
