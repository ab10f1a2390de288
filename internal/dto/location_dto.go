package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateLocationRequest struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Code        string  `json:"code"        validate:"required,max=50"`
	Description *string `json:"description"`
}

// UpdateLocationRequest is a partial update; nil fields are left unchanged.
type UpdateLocationRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Code        *string `json:"code"        validate:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LocationResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
}

type LocationEnvelope struct {
	Status   string           `json:"status"` // created | updated
	Location LocationResponse `json:"location"`
}

type LocationDeletedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
