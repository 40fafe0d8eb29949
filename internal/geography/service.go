package geography

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
)

// Service exposes the read-only geography reference data
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListCountries(ctx context.Context) ([]Country, error) {
	return s.repo.ListCountries(ctx)
}

func (s *Service) ListRegions(ctx context.Context, countryID uuid.UUID) ([]Region, error) {
	return s.repo.ListRegions(ctx, countryID)
}

func (s *Service) ListCities(ctx context.Context, regionID uuid.UUID) ([]City, error) {
	return s.repo.ListCities(ctx, regionID)
}

// GetCity resolves a city id, failing with NotFound for unknown ids
func (s *Service) GetCity(ctx context.Context, id uuid.UUID) (*City, error) {
	city, err := s.repo.GetCityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching city: %w", err)
	}
	if city == nil {
		return nil, apperrors.NotFoundf("city %s not found", id)
	}
	return city, nil
}

// CityDisplayName renders "City, Region" for response payloads. Lookup
// failures degrade to an empty string so response building never fails on
// reference data.
func (s *Service) CityDisplayName(ctx context.Context, id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	detail, err := s.repo.GetCityDetail(ctx, id)
	if err != nil {
		s.logger.Warn("city display name lookup failed", zap.String("city_id", id.String()), zap.Error(err))
		return ""
	}
	if detail == nil {
		return ""
	}
	return fmt.Sprintf("%s, %s", detail.CityName, detail.RegionName)
}
