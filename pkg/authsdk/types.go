package authsdk

// Tenant selects which account population an API call addresses. The values
// mirror the URL path segments.
type Tenant string

const (
	TenantUsers Tenant = "users"
	TenantAdmin Tenant = "admin"
)

// SignUpRequest is the body of POST /api/v1/{tenant}/signup.
type SignUpRequest struct {
	Firstname string `json:"firstname" example:"Alice"`
	Lastname  string `json:"lastname" example:"Smith"`
	Email     string `json:"email" example:"alice@example.com"`
	Password  string `json:"password" example:"hunter2hunter2"`
	Enable2FA bool   `json:"enable2fa" example:"false"`
}

// SignUpResponse is returned on successful signup. Require2FA is set when an
// OTP was emailed and the account awaits verification.
type SignUpResponse struct {
	Message    string `json:"message" example:"Signed up successfully"`
	Require2FA bool   `json:"require2fa,omitempty" example:"false"`
}

// VerifyOTPRequest is the body of the verify-otp and verify-login-otp
// endpoints.
type VerifyOTPRequest struct {
	Email string `json:"email" example:"alice@example.com"`
	OTP   string `json:"otp" example:"123456"`
}

// VerifyOTPResponse reports the outcome of a registration OTP check.
type VerifyOTPResponse struct {
	Verified bool   `json:"verified" example:"true"`
	Message  string `json:"message" example:"OTP verified successfully"`
}

// SignInRequest is the body of POST /api/v1/{tenant}/signin.
type SignInRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

// SignInResponse carries either a session token or a 2FA challenge notice.
type SignInResponse struct {
	Message    string `json:"message" example:"Login successful"`
	Token      string `json:"token,omitempty"`
	Require2FA bool   `json:"require2fa,omitempty" example:"false"`
}

// User is the sanitized account view returned by profile and listing
// endpoints. Password hashes and OTP state are never serialized.
type User struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Enable2FA bool   `json:"enable2fa"`
	Verified  bool   `json:"isVerified"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ProfileResponse wraps the authenticated account's own view.
type ProfileResponse struct {
	User User `json:"user"`
}

// UsersResponse wraps the admin listing of user-tenant accounts.
type UsersResponse struct {
	Users []User `json:"users"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
}

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message" example:"Authentication failed"`
}
