package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/service"
	"github.com/aussiebroadwan/suggestbox/pkg/httpx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// AuthHandler covers login, logout, the profile endpoint, and self-service
// password changes.
type AuthHandler struct {
	AuthService *service.AuthService
	Cookie      httpx.SessionCookie
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Login
//	@Description	Authenticates an email/password pair and sets the session cookie.
//	@Description	Deactivated accounts are refused before credentials are checked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	userResponse	"Authenticated user"
//	@Failure		400		{object}	httpx.ErrorBody	"Invalid credentials"
//	@Failure		403		{object}	httpx.ErrorBody	"Account deactivated"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	user, token, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAccountDeactivated):
			httpx.WriteError(w, http.StatusForbidden, err.Error())
		default:
			log.Error("login failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.Cookie.Set(w, token)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary		Logout
//	@Description	Clears the session cookie. The signed token itself stays valid
//	@Description	until its 24h expiry; there is no server-side revocation.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	statusResponse
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookie.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, statusResponse{Message: "logged out"})
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary		Current user profile
//	@Description	Returns the caller's profile, without secret material.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	userResponse
//	@Failure		401	{object}	httpx.ErrorBody
//	@Failure		404	{object}	httpx.ErrorBody
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.AuthService.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		slogx.FromContext(ctx).Error("profile lookup failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleChangePassword handles PUT /v1/auth/change-password
//
//	@Summary		Change own password
//	@Description	Requires the current password before setting the new one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		changePasswordRequest	true	"Old and new password"
//	@Success		200		{object}	statusResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing fields or old password mismatch"
//	@Failure		401		{object}	httpx.ErrorBody
//	@Router			/v1/auth/change-password [put].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	err := h.AuthService.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrPasswordMismatch):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			slogx.FromContext(ctx).Error("change password failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "change password failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{Message: "password changed"})
}
