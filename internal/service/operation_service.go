package service

import (
	"context"

	"diplomsklad/internal/apierror"
	"diplomsklad/internal/cache"
	"diplomsklad/internal/dto"
	"diplomsklad/internal/metrics"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"
	"diplomsklad/internal/stock"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OperationCommand is one stock movement to apply.
type OperationCommand struct {
	UserID     uint
	ItemID     uint
	LocationID uint
	Type       model.OperationType
	Quantity   int
	Note       *string
}

// OperationService applies stock movements and exposes the audit trail.
type OperationService interface {
	Record(ctx context.Context, req dto.CreateOperationRequest) (*dto.OperationCreatedResponse, error)
	List(ctx context.Context, filter dto.OperationFilter) (*dto.OperationListResponse, error)
	// ApplyTx runs inside a caller's transaction and returns the audit row and
	// the mutated item. The caller commits and then calls Committed.
	ApplyTx(tx *gorm.DB, cmd OperationCommand) (*model.Operation, *model.Item, error)
	// Committed runs the post-commit side effects for an applied operation.
	Committed(ctx context.Context, op *model.Operation, item *model.Item)
}

type operationService struct {
	items      repository.ItemRepository
	users      repository.UserRepository
	locations  repository.LocationRepository
	operations repository.OperationRepository
	cache      *cache.ItemCache
}

func NewOperationService(
	items repository.ItemRepository,
	users repository.UserRepository,
	locations repository.LocationRepository,
	operations repository.OperationRepository,
	itemCache *cache.ItemCache,
) OperationService {
	return &operationService{items: items, users: users, locations: locations, operations: operations, cache: itemCache}
}

// ── Record ────────────────────────────────────────────────────────────────────
//   1. Validate type and quantity
//   2. BEGIN TX: lock item, resolve user and location, check stock,
//      insert operation, mutate item, point item at the operation
//   3. COMMIT, then invalidate the barcode cache

func (s *operationService) Record(ctx context.Context, req dto.CreateOperationRequest) (*dto.OperationCreatedResponse, error) {
	qty := stock.DefaultQuantity
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	cmd := OperationCommand{
		UserID:     req.UserID,
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Type:       model.OperationType(req.Type),
		Quantity:   qty,
		Note:       req.Note,
	}

	var op *model.Operation
	var item *model.Item
	err := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		var err error
		op, item, err = s.ApplyTx(tx, cmd)
		return err
	})
	if err != nil {
		if k, ok := apierror.KindOf(err); ok {
			metrics.OperationsRejected.WithLabelValues(req.Type, k.String()).Inc()
		}
		return nil, err
	}

	s.Committed(ctx, op, item)
	return &dto.OperationCreatedResponse{Status: "ok", OperationID: op.ID}, nil
}

func (s *operationService) ApplyTx(tx *gorm.DB, cmd OperationCommand) (*model.Operation, *model.Item, error) {
	m, err := stock.For(cmd.Type)
	if err != nil {
		return nil, nil, err
	}
	if err := m.Validate(cmd.Quantity); err != nil {
		return nil, nil, err
	}

	item, err := s.items.FindByIDForUpdateTx(tx, cmd.ItemID)
	if err != nil {
		return nil, nil, notFound(err, "item %d not found", cmd.ItemID)
	}
	user, err := s.users.FindByIDTx(tx, cmd.UserID)
	if err != nil {
		return nil, nil, notFound(err, "user %d not found", cmd.UserID)
	}
	if !user.IsActive {
		return nil, nil, apierror.Forbidden("user %d is inactive", cmd.UserID)
	}
	if _, err := s.locations.FindByIDTx(tx, cmd.LocationID); err != nil {
		return nil, nil, notFound(err, "location %d not found", cmd.LocationID)
	}

	if err := m.Check(item, cmd.Quantity); err != nil {
		return nil, nil, err
	}

	op := &model.Operation{
		UserID:     cmd.UserID,
		ItemID:     cmd.ItemID,
		LocationID: cmd.LocationID,
		Type:       m.Kind(),
		Quantity:   cmd.Quantity,
		Note:       cmd.Note,
		CreatedAt:  utcNow(),
	}
	if err := s.operations.CreateTx(tx, op); err != nil {
		return nil, nil, err
	}

	m.Apply(item, cmd.LocationID, cmd.Quantity)
	opID := op.ID
	item.LastOperationID = &opID
	item.UpdatedAt = op.CreatedAt
	if err := s.items.SaveTx(tx, item); err != nil {
		return nil, nil, err
	}
	return op, item, nil
}

func (s *operationService) Committed(ctx context.Context, op *model.Operation, item *model.Item) {
	s.cache.Invalidate(ctx, item)
	metrics.OperationsTotal.WithLabelValues(string(op.Type)).Inc()
	log.Info().
		Uint("operation_id", op.ID).
		Str("type", string(op.Type)).
		Uint("item_id", item.ID).
		Int("quantity", item.Quantity).
		Msg("stock operation committed")
}

func (s *operationService) List(ctx context.Context, filter dto.OperationFilter) (*dto.OperationListResponse, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit)
	rows, total, err := s.operations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OperationResponse, 0, len(rows))
	for i := range rows {
		data = append(data, mapOperationDetail(&rows[i]))
	}
	return &dto.OperationListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
