package http

import (
	"net/http"

	"github.com/wardenhq/warden/internal/auth/service"
	"github.com/wardenhq/warden/pkg/authsdk"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

// UsersHandler handles GET /api/v1/admin/users.
type UsersHandler struct {
	AccountService *service.AccountService
}

//	@Summary		List user accounts
//	@Description	Returns every account in the user tenant, sanitized. Admin tokens only.
//	@Tags			Accounts
//	@Security		TokenAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UsersResponse	"User accounts"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing admin token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/v1/admin/users [get].
func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accounts, err := h.AccountService.ListUsers(ctx)
	if err != nil {
		log.Error("user listing failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	users := make([]authsdk.User, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, sanitizeAccount(a))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UsersResponse{Users: users})
}
