package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterRequest struct {
	ExternalID  int64   `json:"external_id"  validate:"required"`
	Username    *string `json:"username"     validate:"omitempty,max=50"`
	FirstName   *string `json:"first_name"   validate:"omitempty,max=50"`
	LastName    *string `json:"last_name"    validate:"omitempty,max=50"`
	Role        string  `json:"role"         validate:"omitempty,oneof=admin worker"`
	AdminSecret *string `json:"admin_secret"`
}

type CheckAdminSecretRequest struct {
	Secret string `json:"secret"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID         uint    `json:"id"`
	ExternalID int64   `json:"external_id"`
	Username   *string `json:"username"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Role       string  `json:"role"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	LastLogin  *string `json:"last_login"`
}

type AdminTokenResponse struct {
	Status    string `json:"status"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"` // seconds
}
