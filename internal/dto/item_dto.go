package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ScanRequest struct {
	Barcode string `json:"barcode" validate:"required,max=100"`
}

type CreateItemRequest struct {
	Barcode         string  `json:"barcode"           validate:"required,max=100"`
	Name            string  `json:"name"              validate:"required,max=255"`
	SKU             *string `json:"sku"               validate:"omitempty,max=100"`
	Description     *string `json:"description"`
	LocationID      *uint   `json:"location_id"`
	Quantity        int     `json:"quantity"          validate:"gte=0"`
	Note            *string `json:"note"`
	OwnerExternalID int64   `json:"owner_external_id" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID              uint    `json:"id"`
	Barcode         string  `json:"barcode"`
	Name            string  `json:"name"`
	SKU             *string `json:"sku"`
	Description     *string `json:"description"`
	Quantity        int     `json:"quantity"`
	LocationID      *uint   `json:"location_id"`
	Status          string  `json:"status"`
	UserID          *uint   `json:"user_id"`
	LastOperationID *uint   `json:"last_operation_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// ItemEnvelope wraps an item with the outcome of the call that produced it.
type ItemEnvelope struct {
	Status string       `json:"status"` // exists | created
	Item   ItemResponse `json:"item"`
}
