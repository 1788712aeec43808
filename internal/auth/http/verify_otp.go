package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/service"
	"github.com/wardenhq/warden/pkg/authsdk"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// VerifyOTPHandler handles both OTP consumption endpoints: registration
// verification and 2FA login completion.
type VerifyOTPHandler struct {
	AuthService *service.AuthService
}

// HandleRegistration handles POST /api/v1/{tenant}/verify-otp
//
//	@Summary		Verify a registration OTP
//	@Description	Consumes the emailed one-time code and marks the account verified.
//	@Description	A wrong or expired code leaves the pending code in place for retry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			tenant	path		string						true	"Tenant"	Enums(users, admin)
//	@Param			request	body		authsdk.VerifyOTPRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.VerifyOTPResponse	"Account verified"
//	@Failure		400		{object}	authsdk.VerifyOTPResponse	"Invalid or expired OTP"
//	@Failure		404		{object}	authsdk.ErrorResponse		"Unknown account or tenant"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/api/v1/{tenant}/verify-otp [post].
func (h *VerifyOTPHandler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	tenant, req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if err := h.AuthService.VerifyRegistrationOTP(ctx, tenant, req.Email, req.OTP); err != nil {
		h.writeVerifyError(w, r, tenant, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyOTPResponse{
		Verified: true,
		Message:  msgOTPVerified,
	})
}

// HandleLogin handles POST /api/v1/{tenant}/verify-login-otp
//
//	@Summary		Complete a 2FA sign-in
//	@Description	Consumes the one-time code issued at sign-in and returns the session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			tenant	path		string						true	"Tenant"	Enums(users, admin)
//	@Param			request	body		authsdk.VerifyOTPRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.SignInResponse		"Session token"
//	@Failure		400		{object}	authsdk.VerifyOTPResponse	"Invalid or expired OTP"
//	@Failure		404		{object}	authsdk.ErrorResponse		"Unknown account or tenant"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/api/v1/{tenant}/verify-login-otp [post].
func (h *VerifyOTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	tenant, req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	res, err := h.AuthService.VerifyLoginOTP(ctx, tenant, req.Email, req.OTP)
	if err != nil {
		h.writeVerifyError(w, r, tenant, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SignInResponse{
		Message: msgLoginSuccess,
		Token:   res.Token,
	})
}

func (h *VerifyOTPHandler) decode(w http.ResponseWriter, r *http.Request) (domain.Tenant, authsdk.VerifyOTPRequest, bool) {
	tenant, ok := pathTenant(r)
	if !ok {
		writeNotFound(w)
		return "", authsdk.VerifyOTPRequest{}, false
	}

	var req authsdk.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to parse otp body", "err", err)
		writeMessage(w, http.StatusBadRequest, msgFieldsRequired)
		return "", authsdk.VerifyOTPRequest{}, false
	}
	return tenant, req, true
}

func (h *VerifyOTPHandler) writeVerifyError(w http.ResponseWriter, r *http.Request, tenant domain.Tenant, err error) {
	log := slogx.FromContext(r.Context())
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, msgFieldsRequired)
	case errors.Is(err, service.ErrAccountNotFound):
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, service.ErrInvalidOTP):
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.VerifyOTPResponse{
			Verified: false,
			Message:  msgOTPInvalid,
		})
	default:
		log.Error("otp verification failed", "tenant", tenant.String(), "err", err)
		writeMessage(w, http.StatusInternalServerError, msgServerError)
	}
}
