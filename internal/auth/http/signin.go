package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wardenhq/warden/internal/auth/service"
	"github.com/wardenhq/warden/pkg/authsdk"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// SigninHandler handles POST /api/v1/{tenant}/signin.
type SigninHandler struct {
	AuthService *service.AuthService
}

//	@Summary		Sign in
//	@Description	Checks email and password. Accounts with 2FA enabled receive a fresh
//	@Description	one-time code by email instead of a token; complete the login with
//	@Description	the verify-login-otp endpoint.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			tenant	path		string					true	"Tenant"	Enums(users, admin)
//	@Param			request	body		authsdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.SignInResponse	"Session token or 2FA challenge"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Wrong password"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Account not verified"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Unknown account or tenant"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/v1/{tenant}/signin [post].
func (h *SigninHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tenant, ok := pathTenant(r)
	if !ok {
		writeNotFound(w)
		return
	}

	var req authsdk.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse signin body", "err", err)
		writeMessage(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}

	res, err := h.AuthService.SignIn(ctx, tenant, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, msgFieldsRequired)
		case errors.Is(err, service.ErrAccountNotFound):
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
		case errors.Is(err, service.ErrWrongPassword):
			writeMessage(w, http.StatusUnauthorized, msgWrongPassword)
		case errors.Is(err, service.ErrNotVerified):
			writeMessage(w, http.StatusForbidden, msgNotVerified)
		default:
			log.Error("signin failed", "tenant", tenant.String(), "err", err)
			writeMessage(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	if res.Require2FA {
		httpx.WriteJSON(w, http.StatusOK, authsdk.SignInResponse{
			Message:    msgOTPSent,
			Require2FA: true,
		})
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SignInResponse{
		Message: msgLoginSuccess,
		Token:   res.Token,
	})
}
