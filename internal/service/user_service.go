package service

import (
	"context"
	"errors"

	"diplomsklad/internal/apierror"
	"diplomsklad/internal/dto"
	"diplomsklad/internal/model"
	"diplomsklad/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserService covers user lookup, registration and the admin secret check.
type UserService interface {
	GetByExternalID(ctx context.Context, externalID int64) (*dto.UserResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	CheckAdminSecret(ctx context.Context, secret string) (*dto.AdminTokenResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	guard  *SecretGuard
	tokens *AdminTokenIssuer
}

func NewUserService(repo repository.UserRepository, guard *SecretGuard, tokens *AdminTokenIssuer) UserService {
	return &userService{repo: repo, guard: guard, tokens: tokens}
}

func (s *userService) GetByExternalID(ctx context.Context, externalID int64) (*dto.UserResponse, error) {
	u, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, notFound(err, "user %d not found", externalID)
	}
	resp := mapUser(u)
	return &resp, nil
}

// Register creates a user. Existing users are never updated: a second
// registration of the same external id is a Conflict.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	role := model.RoleWorker
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, apierror.Invalid("unknown role %q", req.Role)
		}
		role = r
	}

	if role == model.RoleAdmin {
		secret := ""
		if req.AdminSecret != nil {
			secret = *req.AdminSecret
		}
		if !s.guard.Verify(secret) {
			log.Warn().Int64("external_id", req.ExternalID).Msg("admin registration rejected: secret mismatch")
			return nil, apierror.Forbidden("invalid admin secret")
		}
	}

	_, err := s.repo.FindByExternalID(ctx, req.ExternalID)
	if err == nil {
		return nil, apierror.Conflict("user %d already registered", req.ExternalID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := &model.User{
		ExternalID: req.ExternalID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       role,
		IsActive:   true,
		CreatedAt:  utcNow(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, conflictOnDuplicate(err, "user %d already registered", req.ExternalID)
	}

	log.Info().Int64("external_id", u.ExternalID).Str("role", string(u.Role)).Msg("user registered")
	resp := mapUser(u)
	return &resp, nil
}

// CheckAdminSecret verifies secret and, when a signing key is configured,
// returns an admin token for the admin routes.
func (s *userService) CheckAdminSecret(_ context.Context, secret string) (*dto.AdminTokenResponse, error) {
	if !s.guard.Verify(secret) {
		return nil, apierror.Forbidden("invalid admin secret")
	}
	resp := &dto.AdminTokenResponse{Status: "ok"}
	token, err := s.tokens.Issue()
	switch {
	case errors.Is(err, ErrAdminTokensDisabled):
		return resp, nil
	case err != nil:
		return nil, err
	}
	resp.Token = token
	resp.ExpiresIn = int(s.tokens.TTL().Seconds())
	return resp, nil
}
