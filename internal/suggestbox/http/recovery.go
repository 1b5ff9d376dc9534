package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/service"
	"github.com/aussiebroadwan/suggestbox/pkg/httpx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// RecoveryHandler covers the forgot/verify/reset password flow.
type RecoveryHandler struct {
	RecoveryService *service.RecoveryService
}

// HandleForgot handles POST /v1/auth/forgot-password
//
//	@Summary		Request password reset code
//	@Description	Emails a 6-digit one-time code, valid for 10 minutes. A new
//	@Description	request overwrites any outstanding code.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		forgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	statusResponse
//	@Failure		404		{object}	httpx.ErrorBody	"No such user"
//	@Router			/v1/auth/forgot-password [post].
func (h *RecoveryHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	err := h.RecoveryService.RequestCode(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			slogx.FromContext(ctx).Error("recovery code request failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to send OTP")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{Message: "OTP sent successfully"})
}

// HandleVerify handles POST /v1/auth/verify-otp
//
//	@Summary		Verify password reset code
//	@Description	Consumes the one-time code and returns a single-use reset token
//	@Description	for the reset-password step. Wrong, expired, and already-used
//	@Description	codes all yield the same error.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyOTPRequest	true	"The 6-digit code"
//	@Success		200		{object}	verifyOTPResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Invalid or expired OTP"
//	@Router			/v1/auth/verify-otp [post].
func (h *RecoveryHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	token, err := h.RecoveryService.VerifyCode(ctx, req.OTP)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		slogx.FromContext(ctx).Error("OTP verification failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "OTP verification failed")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, verifyOTPResponse{ResetToken: token})
}

// HandleReset handles POST /v1/auth/reset-password
//
//	@Summary		Reset password
//	@Description	Sets a new password. Requires the reset token minted by
//	@Description	verify-otp, so a reset is always bound to a verified code.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		resetPasswordRequest	true	"Email, reset token, and new password"
//	@Success		200		{object}	statusResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing fields or invalid reset token"
//	@Failure		404		{object}	httpx.ErrorBody	"No such user"
//	@Router			/v1/auth/reset-password [post].
func (h *RecoveryHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	err := h.RecoveryService.ResetPassword(ctx, req.Email, req.ResetToken, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidResetToken):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			slogx.FromContext(ctx).Error("password reset failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "password reset failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{Message: "password reset successfully"})
}
