package trips

import (
	"context"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type TripUseCase interface {
	List(ctx context.Context, page, limit int) ([]domain.Trip, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	GetPricing(ctx context.Context, id uuid.UUID) (*domain.TripPricing, error)
}

type TripCache interface {
	GetTrips(ctx context.Context, page, limit int) ([]domain.Trip, int, bool, error)
	SetTrips(ctx context.Context, page, limit int, trips []domain.Trip, total int) error
}

type TripService struct {
	repo   repository.TripRepository
	cache  TripCache
	logger *zap.Logger
}

func NewTripService(repo repository.TripRepository, cache TripCache, logger *zap.Logger) *TripService {
	return &TripService{repo: repo, cache: cache, logger: logger}
}

// List serves browse pages, from cache when possible.
func (s *TripService) List(ctx context.Context, page, limit int) ([]domain.Trip, int, error) {
	page, limit = NormalizePage(page, limit)

	if s.cache != nil {
		trips, total, ok, err := s.cache.GetTrips(ctx, page, limit)
		if err != nil {
			s.logger.Warn("trip cache read failed", zap.Error(err))
		} else if ok {
			return trips, total, nil
		}
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	trips, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, page, limit, trips, total); err != nil {
			s.logger.Warn("trip cache write failed", zap.Error(err))
		}
	}
	return trips, total, nil
}

func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPricing always reads the stored price; prices are not locked at browse time.
func (s *TripService) GetPricing(ctx context.Context, id uuid.UUID) (*domain.TripPricing, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.TripPricing{
		TripID:      trip.ID,
		Title:       trip.Title,
		Description: trip.Description,
		ImageURL:    trip.CoverImage(),
		UnitPrice:   trip.EstimatedPrice,
	}, nil
}

func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

var _ TripUseCase = (*TripService)(nil)
