package dto

import "time"

// RequestOTPRequest asks for a login code.
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email,company_email"`
}

// RequestOTPResponse acknowledges a code was sent. OTP is only echoed in debug deployments.
type RequestOTPResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	OTP     string `json:"otp,omitempty"`
}

// VerifyOTPRequest exchanges a login code for a session.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	Email string `json:"email"`
	IsHOD bool   `json:"is_hod"`
}
