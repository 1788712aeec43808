package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenHeader is the request header carrying the session token.
const TokenHeader = "token"

// Client talks to a warden deployment.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignUp registers a new account in the tenant.
func (c *Client) SignUp(ctx context.Context, tenant Tenant, req SignUpRequest) (*SignUpResponse, error) {
	var out SignUpResponse
	if err := c.postJSON(ctx, c.path(tenant, "signup"), req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP completes a 2FA registration with the emailed code.
func (c *Client) VerifyOTP(ctx context.Context, tenant Tenant, email, otp string) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	req := VerifyOTPRequest{Email: email, OTP: otp}
	if err := c.postJSON(ctx, c.path(tenant, "verify-otp"), req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn authenticates with email and password. When the account has 2FA
// enabled the response carries Require2FA instead of a token; follow up with
// VerifyLoginOTP.
func (c *Client) SignIn(ctx context.Context, tenant Tenant, email, password string) (*SignInResponse, error) {
	var out SignInResponse
	req := SignInRequest{Email: email, Password: password}
	if err := c.postJSON(ctx, c.path(tenant, "signin"), req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLoginOTP completes a 2FA sign-in and returns the session token.
func (c *Client) VerifyLoginOTP(ctx context.Context, tenant Tenant, email, otp string) (*SignInResponse, error) {
	var out SignInResponse
	req := VerifyOTPRequest{Email: email, OTP: otp}
	if err := c.postJSON(ctx, c.path(tenant, "verify-login-otp"), req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated account's own sanitized view. The token
// must have been issued for the given tenant.
func (c *Client) Profile(ctx context.Context, tenant Tenant, token string) (*User, error) {
	var out ProfileResponse
	if err := c.getJSON(ctx, c.path(tenant, "profile"), token, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Users lists all user-tenant accounts. Requires an admin token.
func (c *Client) Users(ctx context.Context, adminToken string) ([]User, error) {
	var out UsersResponse
	if err := c.getJSON(ctx, "/api/v1/admin/users", adminToken, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) path(tenant Tenant, op string) string {
	return "/api/v1/" + string(tenant) + "/" + op
}

func (c *Client) postJSON(ctx context.Context, path string, body any, token string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), token, out)
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, token, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	return decodeJSON(resp, out)
}

// decodeJSON reads the response body once, turning non-2xx statuses into
// *APIError with the service's message string.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body ErrorResponse
		if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
