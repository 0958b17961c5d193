package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mini-eats/internal/model"
	"mini-eats/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type profileService struct {
	profileRepo repository.ProfileRepository
	logger      zerolog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(profileRepo repository.ProfileRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		logger:      logger.With().Str("service", "profile").Logger(),
	}
}

func (s *profileService) Current(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get profile")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, model.ErrProfileNotFound
	}
	return profile, nil
}

func (s *profileService) Register(ctx context.Context, userID uuid.UUID, req *model.RegisterRequest) (*model.Profile, error) {
	if req == nil {
		return nil, &model.MissingFieldError{Field: "email"}
	}

	profile := &model.Profile{
		ID:       userID,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     req.Role,
	}
	if profile.Role == "" {
		profile.Role = model.RoleClient
	}

	switch {
	case profile.Email == "" || !strings.Contains(profile.Email, "@"):
		return nil, &model.MissingFieldError{Field: "email"}
	case profile.FullName == "":
		return nil, &model.MissingFieldError{Field: "fullName"}
	case !profile.Role.Valid():
		return nil, model.ErrInvalidRole
	}

	var restaurant *model.Restaurant
	if profile.Role == model.RoleRestaurant && req.Restaurant != nil {
		name := strings.TrimSpace(req.Restaurant.Name)
		if name == "" {
			return nil, &model.MissingFieldError{Field: "restaurant.name"}
		}
		restaurant = &model.Restaurant{
			ID:       uuid.New(),
			Name:     name,
			Slug:     restaurantSlug(name, userID),
			Category: strings.TrimSpace(req.Restaurant.Category),
			Phone:    profile.Phone,
			Email:    profile.Email,
			IsActive: true,
		}
	}

	if err := s.profileRepo.Create(ctx, profile, restaurant); err != nil {
		if errors.Is(err, model.ErrProfileExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to register profile")
		return nil, fmt.Errorf("failed to register profile: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("role", string(profile.Role)).
		Msg("profile registered")

	return profile, nil
}

// restaurantSlug derives a URL slug from the restaurant name. The owner's id
// suffix keeps two restaurants with the same name apart.
func restaurantSlug(name string, ownerID uuid.UUID) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	suffix := strings.ReplaceAll(ownerID.String(), "-", "")[:6]
	if base == "" {
		return "restaurant-" + suffix
	}
	return base + "-" + suffix
}
