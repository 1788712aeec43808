package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/service"
	"github.com/wardenhq/warden/pkg/authsdk"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// ProfileHandler handles GET /api/v1/{tenant}/profile.
type ProfileHandler struct {
	AccountService *service.AccountService
}

//	@Summary		Fetch the authenticated account
//	@Description	Returns the sanitized view of the account behind the presented token.
//	@Tags			Accounts
//	@Security		TokenAuth
//	@Produce		json
//	@Param			tenant	path		string					true	"Tenant"	Enums(users, admin)
//	@Success		200		{object}	authsdk.ProfileResponse	"Account details"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or missing token"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/v1/{tenant}/profile [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		writeMessage(w, http.StatusUnauthorized, msgAuthFailed)
		return
	}

	// The guard already validated the tenant segment.
	tenant, _ := pathTenant(r)

	account, err := h.AccountService.GetByID(ctx, tenant, accountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		log.Error("profile lookup failed", "account_id", accountID, "err", err)
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{User: sanitizeAccount(account)})
}

// sanitizeAccount strips credentials and OTP state from the wire view.
func sanitizeAccount(a domain.Account) authsdk.User {
	return authsdk.User{
		ID:        a.ID,
		Firstname: a.Firstname,
		Lastname:  a.Lastname,
		Email:     a.Email,
		Enable2FA: a.Enable2FA,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
