package service

import (
	"time"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/model"
)

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func mapUser(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		CreatedAt:  formatTime(u.CreatedAt),
		LastLogin:  formatTimePtr(u.LastLogin),
	}
}

func mapItem(it *model.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:              it.ID,
		Barcode:         it.Barcode,
		Name:            it.Name,
		SKU:             it.SKU,
		Description:     it.Description,
		Quantity:        it.Quantity,
		LocationID:      it.LocationID,
		Status:          it.Status,
		UserID:          it.UserID,
		LastOperationID: it.LastOperationID,
		CreatedAt:       formatTime(it.CreatedAt),
		UpdatedAt:       formatTime(it.UpdatedAt),
	}
}

func mapItems(items []model.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, mapItem(&items[i]))
	}
	return out
}

func mapLocation(l *model.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Code:        l.Code,
		Description: l.Description,
	}
}

func mapOperation(op *model.Operation) dto.OperationResponse {
	return dto.OperationResponse{
		ID:         op.ID,
		UserID:     op.UserID,
		ItemID:     op.ItemID,
		LocationID: op.LocationID,
		Type:       string(op.Type),
		Quantity:   op.Quantity,
		Note:       op.Note,
		CreatedAt:  formatTime(op.CreatedAt),
	}
}

func mapOperationDetail(d *model.OperationDetail) dto.OperationResponse {
	r := mapOperation(&d.Operation)
	r.ItemBarcode = d.ItemBarcode
	r.UserExternalID = d.UserExternalID
	r.LocationCode = d.LocationCode
	return r
}

func mapSyncLog(l *model.SyncLog) dto.SyncLogResponse {
	return dto.SyncLogResponse{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Status:     string(l.Status),
		Message:    l.Message,
		Attempt:    l.Attempt,
		SyncedAt:   formatTime(l.SyncedAt),
	}
}

// clampPage normalizes pagination query values.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
