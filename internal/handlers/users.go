package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rifat-hossain/bidhaus/internal/model"
	"github.com/rifat-hossain/bidhaus/internal/service"
	"github.com/rifat-hossain/bidhaus/pkg/config"
)

type UserHandler struct {
	authService service.AuthServicer
}

func NewUserHandler(authSvc service.AuthServicer) *UserHandler {
	return &UserHandler{authService: authSvc}
}

// RegisterUser godoc
//
//	@Summary		Register a new User
//	@Description	Register a new user with name, email, and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		model.CreateUserRequest	true	"User registration details"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Failure		409		{object}	map[string]any
//	@Router			/users [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			RespondErrorJSON(w, r, http.StatusConflict, ErrUserExists.Error(), "user already exists with same email", nil)
			return
		}
		slog.Error("[AUTH] registration failed", "error", err)
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Something went wrong", nil)
		return
	}

	resp := map[string]any{
		"user_id": userID.String(),
	}
	RespondSuccessJSON(w, r, http.StatusCreated, "user registered successfully", resp)
}

// LoginUser godoc
//
//	@Summary		Login a User
//	@Description	Login a user with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		model.LoginUserRequest	true	"User login credentials"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		401			{object}	map[string]any
//	@Router			/users/login [post]
func (h *UserHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req model.LoginUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "Invalid email or password", nil)
		return
	}

	// calculate cookie expiry by validating the refresh Token
	refreshClaims, _ := h.authService.ValidateRefreshToken(tokens.RefreshToken)
	expiry := refreshClaims.ExpiresAt.Time

	setRefreshTokenCookie(w, tokens.RefreshToken, expiry)

	resp := map[string]any{
		"access_token": tokens.AccessToken,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Login successful", resp)
}

// RefreshToken godoc
//
//	@Summary		Refresh Access Token
//	@Description	Refresh the access token using a valid refresh token
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	map[string]any
//	@Router			/users/refresh [post]
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(config.RefreshTokenCookieName)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrMissingCookie.Error(), "Refresh token cookie missing", nil)
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrToken.Error(), "Refresh token is invalid or expired", nil)
		return
	}

	refreshClaims, _ := h.authService.ValidateRefreshToken(tokens.RefreshToken)
	setRefreshTokenCookie(w, tokens.RefreshToken, refreshClaims.ExpiresAt.Time)

	resp := map[string]any{
		"access_token": tokens.AccessToken,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Token refreshed successfully", resp)
}

func setRefreshTokenCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.RefreshTokenCookieName,
		Value:    token,
		Expires:  expiry,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
