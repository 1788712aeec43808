package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/store"
	"github.com/wardenhq/warden/internal/auth/store/drivers/sqlite"
	"github.com/wardenhq/warden/pkg/jwtx"
)

// recordingNotifier captures dispatched codes instead of delivering them.
type recordingNotifier struct {
	sent []sentCode
	fail error
}

type sentCode struct {
	destination string
	code        string
}

func (n *recordingNotifier) Send(ctx context.Context, destination, code string) error {
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentCode{destination: destination, code: code})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentCode {
	t.Helper()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

func newTestAuth(t *testing.T, notifier *recordingNotifier) (*AuthService, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	userKeys, err := jwtx.NewHS256("user-secret")
	require.NoError(t, err)
	adminKeys, err := jwtx.NewHS256("admin-secret")
	require.NoError(t, err)

	svc := &AuthService{
		Store:    st,
		Notifier: notifier,
		Signers: map[domain.Tenant]jwtx.Signer{
			domain.TenantUser:  userKeys,
			domain.TenantAdmin: adminKeys,
		},
		RequireVerified: true,
	}
	return svc, st
}

func aliceParams(enable2FA bool) RegisterParams {
	return RegisterParams{
		Firstname: "Alice",
		Lastname:  "Smith",
		Email:     "alice@x.com",
		Password:  "hunter2hunter2",
		Enable2FA: enable2FA,
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuth(t, &recordingNotifier{})
	ctx := context.Background()

	for _, p := range []RegisterParams{
		{Lastname: "S", Email: "a@x.com", Password: "p"},
		{Firstname: "A", Email: "a@x.com", Password: "p"},
		{Firstname: "A", Lastname: "S", Password: "p"},
		{Firstname: "A", Lastname: "S", Email: "a@x.com"},
	} {
		_, err := svc.Register(ctx, domain.TenantUser, p)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestRegisterWithout2FAIsImmediatelyVerified(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, st := newTestAuth(t, notifier)
	ctx := context.Background()

	res, err := svc.Register(ctx, domain.TenantUser, aliceParams(false))
	require.NoError(t, err)
	require.False(t, res.Require2FA)
	require.NotEmpty(t, res.AccountID)

	account, err := st.Accounts().GetByEmail(ctx, domain.TenantUser, "alice@x.com")
	require.NoError(t, err)
	require.True(t, account.Verified)
	require.False(t, account.Enable2FA)
	require.False(t, account.PendingOTP())
	require.NotEqual(t, "hunter2hunter2", account.PasswordHash)

	// No OTP step: nothing dispatched.
	require.Empty(t, notifier.sent)

	// Sign-in immediately yields a session token verifiable by the user
	// tenant's keys.
	signin, err := svc.SignIn(ctx, domain.TenantUser, "alice@x.com", "hunter2hunter2")
	require.NoError(t, err)
	require.False(t, signin.Require2FA)

	userKeys, err := jwtx.NewHS256("user-secret")
	require.NoError(t, err)
	claims, err := userKeys.Verify(signin.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, "user", claims.Tenant)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuth(t, &recordingNotifier{})
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(false))
	require.NoError(t, err)

	// Same tenant: conflict.
	_, err = svc.Register(ctx, domain.TenantUser, aliceParams(false))
	require.ErrorIs(t, err, ErrEmailTaken)

	// Other tenant: same email is a distinct account.
	_, err = svc.Register(ctx, domain.TenantAdmin, aliceParams(false))
	require.NoError(t, err)
}

func TestRegisterWith2FAIssuesChallenge(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, st := newTestAuth(t, notifier)
	ctx := context.Background()

	res, err := svc.Register(ctx, domain.TenantAdmin, aliceParams(true))
	require.NoError(t, err)
	require.True(t, res.Require2FA)

	account, err := st.Accounts().GetByEmail(ctx, domain.TenantAdmin, "alice@x.com")
	require.NoError(t, err)
	require.False(t, account.Verified)
	require.True(t, account.Enable2FA)
	require.True(t, account.PendingOTP())
	require.True(t, account.OTPExpiry.After(time.Now()))

	// The dispatched code is the persisted code.
	require.Equal(t, "alice@x.com", notifier.last(t).destination)
	require.Equal(t, *account.OTP, notifier.last(t).code)
}

func TestNotifierFailureDoesNotRollBackRegistration(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{fail: errors.New("smtp down")}
	svc, st := newTestAuth(t, notifier)
	ctx := context.Background()

	res, err := svc.Register(ctx, domain.TenantUser, aliceParams(true))
	require.NoError(t, err)
	require.True(t, res.Require2FA)

	// Best-effort dispatch: the account and its pending code stand.
	account, err := st.Accounts().GetByEmail(ctx, domain.TenantUser, "alice@x.com")
	require.NoError(t, err)
	require.True(t, account.PendingOTP())
}

func TestVerifyRegistrationOTP(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, st := newTestAuth(t, notifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(true))
	require.NoError(t, err)
	code := notifier.last(t).code

	t.Run("unknown email", func(t *testing.T) {
		err := svc.VerifyRegistrationOTP(ctx, domain.TenantUser, "nobody@x.com", code)
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("wrong code leaves state untouched", func(t *testing.T) {
		err := svc.VerifyRegistrationOTP(ctx, domain.TenantUser, "alice@x.com", "000000")
		require.ErrorIs(t, err, ErrInvalidOTP)

		account, err := st.Accounts().GetByEmail(ctx, domain.TenantUser, "alice@x.com")
		require.NoError(t, err)
		require.True(t, account.PendingOTP(), "failed attempt must not clear the code")
		require.False(t, account.Verified)
	})

	t.Run("correct code verifies and clears", func(t *testing.T) {
		require.NoError(t, svc.VerifyRegistrationOTP(ctx, domain.TenantUser, "alice@x.com", code))

		account, err := st.Accounts().GetByEmail(ctx, domain.TenantUser, "alice@x.com")
		require.NoError(t, err)
		require.True(t, account.Verified)
		require.False(t, account.PendingOTP())
	})

	t.Run("same code cannot be consumed twice", func(t *testing.T) {
		err := svc.VerifyRegistrationOTP(ctx, domain.TenantUser, "alice@x.com", code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})
}

func TestExpiredOTPRejectedEvenWhenMatching(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, st := newTestAuth(t, notifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(true))
	require.NoError(t, err)

	account, err := st.Accounts().GetByEmail(ctx, domain.TenantUser, "alice@x.com")
	require.NoError(t, err)

	// Push the live code into the past.
	require.NoError(t, st.Accounts().SetPendingOTP(
		ctx, domain.TenantUser, account.ID, notifier.last(t).code, time.Now().Add(-time.Second)))

	err = svc.VerifyRegistrationOTP(ctx, domain.TenantUser, "alice@x.com", notifier.last(t).code)
	require.ErrorIs(t, err, ErrInvalidOTP)
}

func TestSignInFailureKinds(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, _ := newTestAuth(t, notifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(false))
	require.NoError(t, err)

	t.Run("missing input", func(t *testing.T) {
		_, err := svc.SignIn(ctx, domain.TenantUser, "", "pw")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.SignIn(ctx, domain.TenantUser, "nobody@x.com", "pw")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, domain.TenantUser, "alice@x.com", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("tenant partitions apply", func(t *testing.T) {
		_, err := svc.SignIn(ctx, domain.TenantAdmin, "alice@x.com", "hunter2hunter2")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestSignInRejectsUnverifiedBeforePasswordCheck(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, _ := newTestAuth(t, notifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(true))
	require.NoError(t, err)

	// Even the correct password is not consulted while unverified.
	_, err = svc.SignIn(ctx, domain.TenantUser, "alice@x.com", "hunter2hunter2")
	require.ErrorIs(t, err, ErrNotVerified)

	_, err = svc.SignIn(ctx, domain.TenantUser, "alice@x.com", "wrong")
	require.ErrorIs(t, err, ErrNotVerified)
}

func TestSignInVerifiedPolicyDisabled(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, _ := newTestAuth(t, notifier)
	svc.RequireVerified = false
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(true))
	require.NoError(t, err)

	// With the policy off, the password check runs and the 2FA challenge
	// is issued despite the account being unverified.
	res, err := svc.SignIn(ctx, domain.TenantUser, "alice@x.com", "hunter2hunter2")
	require.NoError(t, err)
	require.True(t, res.Require2FA)
	require.Empty(t, res.Token)
}

func TestSignInWith2FAIssuesFreshChallenge(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, st := newTestAuth(t, notifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantAdmin, aliceParams(true))
	require.NoError(t, err)
	registrationCode := notifier.last(t).code
	require.NoError(t, svc.VerifyRegistrationOTP(ctx, domain.TenantAdmin, "alice@x.com", registrationCode))

	res, err := svc.SignIn(ctx, domain.TenantAdmin, "alice@x.com", "hunter2hunter2")
	require.NoError(t, err)
	require.True(t, res.Require2FA)
	require.Empty(t, res.Token)

	loginCode := notifier.last(t).code

	account, err := st.Accounts().GetByEmail(ctx, domain.TenantAdmin, "alice@x.com")
	require.NoError(t, err)
	require.True(t, account.PendingOTP())
	require.Equal(t, loginCode, *account.OTP)

	// A second sign-in supersedes the previous challenge.
	_, err = svc.SignIn(ctx, domain.TenantAdmin, "alice@x.com", "hunter2hunter2")
	require.NoError(t, err)
	supersededCode := loginCode
	freshCode := notifier.last(t).code

	if supersededCode != freshCode {
		_, err = svc.VerifyLoginOTP(ctx, domain.TenantAdmin, "alice@x.com", supersededCode)
		require.ErrorIs(t, err, ErrInvalidOTP)
	}

	signin, err := svc.VerifyLoginOTP(ctx, domain.TenantAdmin, "alice@x.com", freshCode)
	require.NoError(t, err)
	require.NotEmpty(t, signin.Token)

	adminKeys, err := jwtx.NewHS256("admin-secret")
	require.NoError(t, err)
	claims, err := adminKeys.Verify(signin.Token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, "admin", claims.Tenant)

	// The consumed code is gone.
	account, err = st.Accounts().GetByEmail(ctx, domain.TenantAdmin, "alice@x.com")
	require.NoError(t, err)
	require.False(t, account.PendingOTP())
}

func TestVerifyLoginOTPWrongCodeIssuesNoToken(t *testing.T) {
	t.Parallel()
	notifier := &recordingNotifier{}
	svc, _ := newTestAuth(t, notifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.TenantUser, aliceParams(true))
	require.NoError(t, err)
	require.NoError(t, svc.VerifyRegistrationOTP(ctx, domain.TenantUser, "alice@x.com", notifier.last(t).code))

	_, err = svc.SignIn(ctx, domain.TenantUser, "alice@x.com", "hunter2hunter2")
	require.NoError(t, err)

	res, err := svc.VerifyLoginOTP(ctx, domain.TenantUser, "alice@x.com", "000000")
	require.ErrorIs(t, err, ErrInvalidOTP)
	require.Empty(t, res.Token)
}
