package http

import (
	"net/http"

	"github.com/wardenhq/warden/pkg/authsdk"
	"github.com/wardenhq/warden/pkg/httpx"
)

// Stable client-facing message strings. Existing clients match on these
// exact values, so they are part of the API contract.
const (
	msgFieldsRequired = "All fields are required"
	msgEmailTaken     = "Email already in use"
	msgSignedUp       = "Signed up successfully"
	msgOTPSent        = "OTP sent to email"
	msgOTPVerified    = "OTP verified successfully"
	msgOTPInvalid     = "Invalid or expired OTP"
	msgUserNotFound   = "User not found"
	msgWrongPassword  = "Wrong password"
	msgNotVerified    = "Account not verified"
	msgLoginSuccess   = "Login successful"
	msgAuthFailed     = "Authentication failed"
	msgNotFound       = "Not found"
	msgServerError    = "Internal server error"
)

func writeMessage(w http.ResponseWriter, code int, message string) {
	httpx.WriteJSON(w, code, authsdk.ErrorResponse{Message: message})
}

func writeNotFound(w http.ResponseWriter) {
	writeMessage(w, http.StatusNotFound, msgNotFound)
}
