package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateOperationRequest records one stock movement. Quantity defaults to 1.
type CreateOperationRequest struct {
	UserID     uint    `json:"user_id"     validate:"required"`
	ItemID     uint    `json:"item_id"     validate:"required"`
	LocationID uint    `json:"location_id" validate:"required"`
	Type       string  `json:"type"        validate:"required,oneof=receive ship move inventory"`
	Quantity   *int    `json:"quantity"`
	Note       *string `json:"note"`
}

// OperationFilter narrows the admin audit trail.
type OperationFilter struct {
	ItemID *uint  `form:"item_id"`
	Type   string `form:"type"  validate:"omitempty,oneof=receive ship move inventory"`
	Page   int    `form:"page"  validate:"omitempty,gte=1"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OperationCreatedResponse struct {
	Status      string `json:"status"`
	OperationID uint   `json:"operation_id"`
}

type OperationResponse struct {
	ID             uint    `json:"id"`
	UserID         uint    `json:"user_id"`
	ItemID         uint    `json:"item_id"`
	LocationID     uint    `json:"location_id"`
	Type           string  `json:"type"`
	Quantity       int     `json:"quantity"`
	Note           *string `json:"note"`
	CreatedAt      string  `json:"created_at"`
	ItemBarcode    string  `json:"item_barcode,omitempty"`
	UserExternalID int64   `json:"user_external_id,omitempty"`
	LocationCode   string  `json:"location_code,omitempty"`
}

type OperationListResponse struct {
	Data  []OperationResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
