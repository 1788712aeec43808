package domain

import "time"

// Account is a registered identity within one tenant. The OTP and OTPExpiry
// fields are either both nil (no verification pending) or both set (a code
// is live); the store only ever writes or clears them together.
type Account struct {
	ID           string
	Tenant       Tenant
	Firstname    string
	Lastname     string
	Email        string // unique within the tenant, stored as submitted
	PasswordHash string // argon2id encoded, never plaintext
	Enable2FA    bool   // set at registration, immutable afterwards
	OTP          *string
	OTPExpiry    *time.Time
	Verified     bool // false means sign-in may not issue a session
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingOTP reports whether a one-time code is currently live on the
// account. Expiry is judged at verification time, not here.
func (a Account) PendingOTP() bool {
	return a.OTP != nil && a.OTPExpiry != nil
}
