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

// SignupHandler handles POST /api/v1/{tenant}/signup.
type SignupHandler struct {
	AuthService *service.AuthService
}

//	@Summary		Register a new account
//	@Description	Creates an account in the tenant. With enable2fa the account stays
//	@Description	unverified and a one-time code is emailed; complete registration with
//	@Description	the verify-otp endpoint.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			tenant	path		string					true	"Tenant"	Enums(users, admin)
//	@Param			request	body		authsdk.SignUpRequest	true	"Account details"
//	@Success		200		{object}	authsdk.SignUpResponse	"Account created"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields or email already in use"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Unknown tenant"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/v1/{tenant}/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tenant, ok := pathTenant(r)
	if !ok {
		writeNotFound(w)
		return
	}

	var req authsdk.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse signup body", "err", err)
		writeMessage(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}

	res, err := h.AuthService.Register(ctx, tenant, service.RegisterParams{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
		Enable2FA: req.Enable2FA,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, msgFieldsRequired)
		case errors.Is(err, service.ErrEmailTaken):
			writeMessage(w, http.StatusBadRequest, msgEmailTaken)
		default:
			log.Error("signup failed", "tenant", tenant.String(), "err", err)
			writeMessage(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	if res.Require2FA {
		httpx.WriteJSON(w, http.StatusOK, authsdk.SignUpResponse{
			Message:    msgOTPSent,
			Require2FA: true,
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.SignUpResponse{Message: msgSignedUp})
}
