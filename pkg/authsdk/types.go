package authsdk

import "time"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is the stable error code, e.g. "invalid_credentials".
	Error string `json:"error" example:"invalid_credentials"`

	// Message is an optional human-readable explanation.
	Message string `json:"message,omitempty"`

	// Fields lists request fields that failed validation.
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is returned by endpoints with nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Authentication
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"admin@example.com"`
	Password string `json:"password" validate:"required" example:"admin123"`
}

// LoginResponse carries the bearer token and a summary of the user.
type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role" example:"ADMIN"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200" example:"Alice Student"`
	Email    string `json:"email" validate:"required,email" example:"alice@uni.edu"`
	Password string `json:"password" validate:"required" example:"correct-horse"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
}

// ============================================================================
// Password reset
// ============================================================================

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required" example:"alice@uni.edu"`
}

// ForgotPasswordResponse is identical for known and unknown addresses. Token
// is only present when the server runs with token exposure enabled.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ValidateResetTokenResponse struct {
	Valid bool `json:"valid"`
}

// ============================================================================
// Users
// ============================================================================

// UserProfile is the public view of an account.
type UserProfile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role" example:"STUDENT"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=200" example:"Ivy Instructor"`
	Email    string `json:"email" validate:"required,email" example:"ivy@uni.edu"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ADMIN INSTRUCTOR STUDENT" example:"INSTRUCTOR"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Signer   string `json:"signer" example:"ok"`
}
