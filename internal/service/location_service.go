package service

import (
	"context"
	"errors"
	"fmt"

	"diplomsklad/internal/apierror"
	"diplomsklad/internal/dto"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type LocationService interface {
	List(ctx context.Context) ([]dto.LocationResponse, error)
	Create(ctx context.Context, req dto.CreateLocationRequest) (*dto.LocationEnvelope, error)
	Update(ctx context.Context, id uint, req dto.UpdateLocationRequest) (*dto.LocationEnvelope, error)
	// Delete refuses while any item or operation references the location.
	Delete(ctx context.Context, id uint) (*dto.LocationDeletedResponse, error)
}

type locationService struct {
	repo repository.LocationRepository
}

func NewLocationService(repo repository.LocationRepository) LocationService {
	return &locationService{repo: repo}
}

func (s *locationService) List(ctx context.Context) ([]dto.LocationResponse, error) {
	locs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(locs))
	for i := range locs {
		out = append(out, mapLocation(&locs[i]))
	}
	return out, nil
}

func (s *locationService) Create(ctx context.Context, req dto.CreateLocationRequest) (*dto.LocationEnvelope, error) {
	if err := s.ensureCodeFree(ctx, req.Code, 0); err != nil {
		return nil, err
	}
	l := &model.Location{Name: req.Name, Code: req.Code, Description: req.Description}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, conflictOnDuplicate(err, "location code %q already exists", req.Code)
	}
	log.Info().Str("code", l.Code).Uint("location_id", l.ID).Msg("location created")
	return &dto.LocationEnvelope{Status: "created", Location: mapLocation(l)}, nil
}

func (s *locationService) Update(ctx context.Context, id uint, req dto.UpdateLocationRequest) (*dto.LocationEnvelope, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "location %d not found", id)
	}

	if req.Code != nil && *req.Code != l.Code {
		if err := s.ensureCodeFree(ctx, *req.Code, l.ID); err != nil {
			return nil, err
		}
		l.Code = *req.Code
	}
	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Description != nil {
		l.Description = req.Description
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, conflictOnDuplicate(err, "location code %q already exists", l.Code)
	}
	return &dto.LocationEnvelope{Status: "updated", Location: mapLocation(l)}, nil
}

func (s *locationService) Delete(ctx context.Context, id uint) (*dto.LocationDeletedResponse, error) {
	var code string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		l, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "location %d not found", id)
		}
		items, ops, err := s.repo.CountReferencesTx(tx, id)
		if err != nil {
			return err
		}
		if items > 0 || ops > 0 {
			return apierror.Conflict("location %s is referenced by %d items and %d operations", l.Code, items, ops)
		}
		code = l.Code
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("code", code).Uint("location_id", id).Msg("location deleted")
	return &dto.LocationDeletedResponse{Status: "deleted", Message: fmt.Sprintf("location %s deleted", code)}, nil
}

// ensureCodeFree fails with Conflict when code belongs to a row other than self.
func (s *locationService) ensureCodeFree(ctx context.Context, code string, self uint) error {
	existing, err := s.repo.FindByCode(ctx, code)
	if err == nil && existing.ID != self {
		return apierror.Conflict("location code %q already exists", code)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
