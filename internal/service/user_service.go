package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/dto"
	"github.com/noah-isme/code-quest-api/internal/models"
	"github.com/noah-isme/code-quest-api/internal/repository"
)

// UserService registers players coming from an external identity provider.
type UserService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewUserService constructs the login service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// Login creates the user on first sight of a provider id and refreshes the profile fields
// on later logins. Repeated logins never create a second user.
func (s *userService) Login(ctx context.Context, payload dto.LoginRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	providerID := strings.TrimSpace(payload.ProviderID)
	email := strings.TrimSpace(payload.Email)
	username := strings.TrimSpace(s.sanitizer.Sanitize(payload.Username))
	profilePic := strings.TrimSpace(payload.ProfilePic)
	provider := strings.ToLower(strings.TrimSpace(payload.Provider))

	user, err := s.repo.FindByProviderID(ctx, providerID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ProviderID: providerID,
			Provider:   provider,
			Email:      email,
			Username:   username,
			ProfilePic: profilePic,
		}
		if err := s.repo.Create(ctx, &user); err != nil {
			return dto.UserResponse{}, err
		}
		s.logger.Info().Uint("user_id", user.ID).Str("provider", provider).Msg("user registered")
		return dto.NewUserResponse(user), nil
	case err != nil:
		return dto.UserResponse{}, err
	}

	changed := false
	for _, field := range []struct {
		target *string
		value  string
	}{
		{&user.Email, email},
		{&user.Username, username},
		{&user.ProfilePic, profilePic},
		{&user.Provider, provider},
	} {
		if field.value != "" && *field.target != field.value {
			*field.target = field.value
			changed = true
		}
	}

	if changed {
		if err := s.repo.Update(ctx, &user); err != nil {
			return dto.UserResponse{}, err
		}
		s.logger.Debug().Uint("user_id", user.ID).Msg("user profile refreshed")
	}

	return dto.NewUserResponse(user), nil
}
