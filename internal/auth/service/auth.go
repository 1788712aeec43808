package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/notify"
	"github.com/wardenhq/warden/internal/auth/store"
	"github.com/wardenhq/warden/pkg/cryptox"
	"github.com/wardenhq/warden/pkg/idx"
	"github.com/wardenhq/warden/pkg/jwtx"
	"github.com/wardenhq/warden/pkg/otpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

var (
	ErrInvalidInput    = errors.New("invalid_input")
	ErrEmailTaken      = errors.New("email_already_in_use")
	ErrAccountNotFound = errors.New("account_not_found")
	ErrWrongPassword   = errors.New("wrong_password")
	ErrNotVerified     = errors.New("account_not_verified")
	ErrInvalidOTP      = errors.New("invalid_or_expired_otp")
)

const defaultNotifyTimeout = 5 * time.Second

// AuthService is the authentication state machine. It drives an account
// through registration, optional OTP verification, and sign-in, and is the
// only component that mutates account state.
//
// Per account the states are Unverified -> PendingRegistrationOTP ->
// Verified; per sign-in attempt CredentialChecked -> PendingLoginOTP ->
// SessionIssued, where the OTP steps exist only for 2FA-enabled accounts.
type AuthService struct {
	Store    store.Store
	Notifier notify.Notifier

	// Signers holds one tenant-scoped token signer per tenant kind.
	Signers map[domain.Tenant]jwtx.Signer

	// TokenTTL of 0 issues tokens without an expiry claim.
	TokenTTL time.Duration

	// OTPTTL is the validity window for issued codes (default 10m).
	OTPTTL time.Duration

	// OTPDigits is the code length (default 6).
	OTPDigits int

	// NotifyTimeout bounds the best-effort OTP dispatch (default 5s).
	NotifyTimeout time.Duration

	// RequireVerified rejects sign-in for unverified accounts before the
	// password is even compared. Some deployments of the original service
	// omitted this check; the flag keeps both behaviors available.
	RequireVerified bool
}

type RegisterParams struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	Enable2FA bool
}

type RegisterResult struct {
	AccountID string

	// Require2FA means an OTP challenge was issued and registration stays
	// incomplete until the code is verified.
	Require2FA bool
}

type SignInResult struct {
	// Token is the signed session credential; empty when Require2FA is set.
	Token string

	// Require2FA means a fresh OTP challenge was issued instead of a token.
	Require2FA bool
}

// Register creates an account in the given tenant. Without 2FA the account
// is immediately verified and may sign in; with 2FA it is persisted
// unverified with a live OTP pair and the code is dispatched best-effort.
func (s *AuthService) Register(
	ctx context.Context,
	tenant domain.Tenant,
	p RegisterParams,
) (RegisterResult, error) {
	if p.Firstname == "" || p.Lastname == "" || p.Email == "" || p.Password == "" {
		return RegisterResult{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Tenant:       tenant,
		Firstname:    p.Firstname,
		Lastname:     p.Lastname,
		Email:        p.Email,
		PasswordHash: hash,
		Enable2FA:    p.Enable2FA,
		Verified:     !p.Enable2FA,
	}

	var code string
	if p.Enable2FA {
		code, err = otpx.Generate(s.OTPDigits)
		if err != nil {
			return RegisterResult{}, err
		}
		expiry := time.Now().Add(s.otpTTL()).UTC()
		account.OTP = &code
		account.OTPExpiry = &expiry
	}

	// The unique (tenant, email) index makes duplicate rejection atomic
	// with the insert; no pre-check needed.
	if err := s.Store.Accounts().Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return RegisterResult{}, ErrEmailTaken
		}
		return RegisterResult{}, fmt.Errorf("create account: %w", err)
	}

	if p.Enable2FA {
		s.dispatch(ctx, account.Email, code)
	}

	slogx.FromContext(ctx).Info("account registered",
		"tenant", tenant.String(),
		"account_id", account.ID,
		"require_2fa", p.Enable2FA,
	)

	return RegisterResult{AccountID: account.ID, Require2FA: p.Enable2FA}, nil
}

// VerifyRegistrationOTP consumes a pending registration code. Success
// clears the code pair and marks the account verified in one transition; a
// wrong or expired code leaves all state untouched so the user may retry
// within the window.
func (s *AuthService) VerifyRegistrationOTP(
	ctx context.Context,
	tenant domain.Tenant,
	email, submitted string,
) error {
	return s.consumeOTP(ctx, tenant, email, submitted)
}

// SignIn checks credentials and either issues a session token or, for
// 2FA-enabled accounts, persists and dispatches a fresh OTP challenge. A new
// challenge silently supersedes any prior unconsumed code.
func (s *AuthService) SignIn(
	ctx context.Context,
	tenant domain.Tenant,
	email, password string,
) (SignInResult, error) {
	if email == "" || password == "" {
		return SignInResult{}, ErrInvalidInput
	}

	account, err := s.Store.Accounts().GetByEmail(ctx, tenant, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignInResult{}, ErrAccountNotFound
		}
		return SignInResult{}, fmt.Errorf("load account: %w", err)
	}

	if s.RequireVerified && !account.Verified {
		return SignInResult{}, ErrNotVerified
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return SignInResult{}, ErrWrongPassword
		}
		return SignInResult{}, fmt.Errorf("verify password: %w", err)
	}

	if account.Enable2FA {
		code, err := otpx.Generate(s.OTPDigits)
		if err != nil {
			return SignInResult{}, err
		}
		expiry := time.Now().Add(s.otpTTL()).UTC()

		if err := s.Store.Accounts().SetPendingOTP(ctx, tenant, account.ID, code, expiry); err != nil {
			return SignInResult{}, fmt.Errorf("persist otp: %w", err)
		}

		s.dispatch(ctx, account.Email, code)

		slogx.FromContext(ctx).Info("login otp challenge issued",
			"tenant", tenant.String(), "account_id", account.ID)
		return SignInResult{Require2FA: true}, nil
	}

	token, err := s.issueToken(tenant, account.ID)
	if err != nil {
		return SignInResult{}, err
	}

	slogx.FromContext(ctx).Info("session issued",
		"tenant", tenant.String(), "account_id", account.ID)
	return SignInResult{Token: token}, nil
}

// VerifyLoginOTP consumes a pending login code and issues the session token
// that the password check alone withheld.
func (s *AuthService) VerifyLoginOTP(
	ctx context.Context,
	tenant domain.Tenant,
	email, submitted string,
) (SignInResult, error) {
	if err := s.consumeOTP(ctx, tenant, email, submitted); err != nil {
		return SignInResult{}, err
	}

	account, err := s.Store.Accounts().GetByEmail(ctx, tenant, email)
	if err != nil {
		return SignInResult{}, fmt.Errorf("load account: %w", err)
	}

	token, err := s.issueToken(tenant, account.ID)
	if err != nil {
		return SignInResult{}, err
	}

	slogx.FromContext(ctx).Info("session issued after otp",
		"tenant", tenant.String(), "account_id", account.ID)
	return SignInResult{Token: token}, nil
}

// consumeOTP runs the shared verification transition: match the live code
// exactly (constant time), require the expiry to still be in the future,
// then clear the pair and mark the account verified in a single atomic
// update. Failure leaves the pending code untouched.
func (s *AuthService) consumeOTP(
	ctx context.Context,
	tenant domain.Tenant,
	email, submitted string,
) error {
	if email == "" || submitted == "" {
		return ErrInvalidInput
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetByEmail(ctx, tenant, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("load account: %w", err)
		}

		if !account.PendingOTP() {
			// Covers both "never challenged" and "already consumed".
			return ErrInvalidOTP
		}
		if !otpx.Matches(*account.OTP, submitted) {
			return ErrInvalidOTP
		}
		if otpx.Expired(*account.OTPExpiry, time.Now()) {
			return ErrInvalidOTP
		}

		if err := tx.Accounts().ClearPendingOTP(ctx, tenant, account.ID, true); err != nil {
			return fmt.Errorf("clear otp: %w", err)
		}
		return nil
	})
}

func (s *AuthService) issueToken(tenant domain.Tenant, accountID string) (string, error) {
	signer, ok := s.Signers[tenant]
	if !ok {
		return "", fmt.Errorf("no signer configured for tenant %q", tenant)
	}
	return signer.Sign(jwtx.NewSessionClaims(accountID, tenant.String(), s.TokenTTL, time.Now()))
}

// dispatch sends the code best-effort under a bounded timeout. Delivery
// failure is logged and deliberately not propagated; the persisted OTP
// stands either way.
func (s *AuthService) dispatch(ctx context.Context, email, code string) {
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Notifier.Send(sendCtx, email, code); err != nil {
		slogx.FromContext(ctx).Warn("otp dispatch failed", "destination", email, "err", err)
	}
}

func (s *AuthService) otpTTL() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return otpx.DefaultTTL
}
