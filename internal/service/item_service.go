package service

import (
	"context"
	"errors"

	"diplomsklad/internal/apierror"
	"diplomsklad/internal/cache"
	"diplomsklad/internal/dto"
	"diplomsklad/internal/infra"
	"diplomsklad/internal/metrics"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ScannedItemName is the placeholder name of items created by a scan.
const ScannedItemName = "Новый товар"

type ItemService interface {
	// Scan returns the item with barcode, creating an empty placeholder when
	// the barcode is unknown.
	Scan(ctx context.Context, barcode string) (*dto.ItemEnvelope, error)
	Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemEnvelope, error)
	// ListByOwner registers the owner on first sight and lists their items.
	ListByOwner(ctx context.Context, externalID int64) ([]dto.ItemResponse, error)
	ExportStock(ctx context.Context) (*excelize.File, error)
	Label(ctx context.Context, id uint) ([]byte, error)
}

type itemService struct {
	items     repository.ItemRepository
	users     repository.UserRepository
	locations repository.LocationRepository
	ops       OperationService
	cache     *cache.ItemCache
}

func NewItemService(
	items repository.ItemRepository,
	users repository.UserRepository,
	locations repository.LocationRepository,
	ops OperationService,
	itemCache *cache.ItemCache,
) ItemService {
	return &itemService{items: items, users: users, locations: locations, ops: ops, cache: itemCache}
}

func (s *itemService) Scan(ctx context.Context, barcode string) (*dto.ItemEnvelope, error) {
	if it, ok := s.cache.Get(ctx, barcode); ok {
		metrics.ScansTotal.WithLabelValues("exists").Inc()
		return &dto.ItemEnvelope{Status: "exists", Item: mapItem(it)}, nil
	}

	it, err := s.items.FindByBarcode(ctx, barcode)
	if err == nil {
		s.cache.Set(ctx, it)
		metrics.ScansTotal.WithLabelValues("exists").Inc()
		return &dto.ItemEnvelope{Status: "exists", Item: mapItem(it)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := utcNow()
	it = &model.Item{
		Barcode:   barcode,
		Name:      ScannedItemName,
		Quantity:  0,
		Status:    model.ItemStatusStored,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.items.Create(ctx, it); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// A concurrent scan created it first.
		existing, ferr := s.items.FindByBarcode(ctx, barcode)
		if ferr != nil {
			return nil, ferr
		}
		metrics.ScansTotal.WithLabelValues("exists").Inc()
		return &dto.ItemEnvelope{Status: "exists", Item: mapItem(existing)}, nil
	}

	log.Info().Str("barcode", barcode).Uint("item_id", it.ID).Msg("item created by scan")
	metrics.ScansTotal.WithLabelValues("created").Inc()
	return &dto.ItemEnvelope{Status: "created", Item: mapItem(it)}, nil
}

// Create inserts the item at quantity 0; a positive requested quantity is
// then booked as a receive operation in the same transaction.
func (s *itemService) Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemEnvelope, error) {
	if req.Quantity < 0 {
		return nil, apierror.Invalid("quantity must not be negative, got %d", req.Quantity)
	}
	if req.Quantity > 0 && req.LocationID == nil {
		return nil, apierror.Invalid("location_id is required when quantity is positive")
	}

	now := utcNow()
	item := &model.Item{
		Barcode:     req.Barcode,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		LocationID:  req.LocationID,
		Status:      model.ItemStatusStored,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The owner is registered on first sight in the same transaction, so a
	// rejected item leaves no user behind.
	var op *model.Operation
	err := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		if req.LocationID != nil {
			if _, err := s.locations.FindByIDTx(tx, *req.LocationID); err != nil {
				return notFound(err, "location %d not found", *req.LocationID)
			}
		}
		owner, _, err := s.users.FirstOrCreateTx(tx, &model.User{
			ExternalID: req.OwnerExternalID,
			Role:       model.RoleWorker,
			IsActive:   true,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		ownerID := owner.ID
		item.UserID = &ownerID
		if err := s.items.CreateTx(tx, item); err != nil {
			return conflictOnDuplicate(err, "barcode %q already exists", req.Barcode)
		}
		if req.Quantity == 0 {
			return nil
		}
		op, item, err = s.ops.ApplyTx(tx, OperationCommand{
			UserID:     ownerID,
			ItemID:     item.ID,
			LocationID: *req.LocationID,
			Type:       model.OperationReceive,
			Quantity:   req.Quantity,
			Note:       req.Note,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if op != nil {
		s.ops.Committed(ctx, op, item)
	}
	log.Info().Str("barcode", item.Barcode).Uint("item_id", item.ID).Int("quantity", item.Quantity).Msg("item created")
	return &dto.ItemEnvelope{Status: "created", Item: mapItem(item)}, nil
}

func (s *itemService) ListByOwner(ctx context.Context, externalID int64) ([]dto.ItemResponse, error) {
	owner, created, err := s.users.FirstOrCreate(ctx, &model.User{
		ExternalID: externalID,
		Role:       model.RoleWorker,
		IsActive:   true,
		CreatedAt:  utcNow(),
	})
	if err != nil {
		return nil, err
	}
	if created {
		log.Info().Int64("external_id", externalID).Msg("user registered on first sight")
		return []dto.ItemResponse{}, nil
	}
	items, err := s.items.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	return mapItems(items), nil
}

func (s *itemService) ExportStock(ctx context.Context) (*excelize.File, error) {
	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Location, len(locs))
	for _, l := range locs {
		byID[l.ID] = l
	}
	return infra.BuildStockWorkbook(items, byID)
}

func (s *itemService) Label(ctx context.Context, id uint) ([]byte, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "item %d not found", id)
	}
	var loc *model.Location
	if item.LocationID != nil {
		l, err := s.locations.FindByID(ctx, *item.LocationID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			loc = l
		}
	}
	return infra.RenderItemLabel(item, loc, utcNow())
}
