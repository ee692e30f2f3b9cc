package analytics

import (
	"context"

	"eventbook/internal/shared/constants"
	"eventbook/pkg/cache"
	"eventbook/pkg/clock"

	"github.com/google/uuid"
)

const topEventsLimit = 5

// Service defines the analytics service interface
type Service interface {
	GetOverview(ctx context.Context) (*Overview, error)
	GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	clock clock.Clock
}

// NewService creates a new analytics service. Figures are cached for
// constants.TTL_ANALYTICS, so they may trail live sales by that much.
func NewService(repo Repository, c cache.Service, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.Real()
	}
	return &service{repo: repo, cache: c, clock: clk}
}

func (s *service) GetOverview(ctx context.Context) (*Overview, error) {
	var overview Overview
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_OVERVIEW, constants.TTL_ANALYTICS, func() (interface{}, error) {
		o, err := s.repo.GetOverview(ctx, s.clock.Now())
		if err != nil {
			return nil, err
		}
		if o.TopEvents, err = s.repo.GetTopEvents(ctx, topEventsLimit); err != nil {
			return nil, err
		}
		return o, nil
	}, &overview)
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

func (s *service) GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error) {
	var analytics EventAnalytics
	err := s.cache.GetOrSet(ctx, constants.BuildAnalyticsEventKey(eventID.String()), constants.TTL_ANALYTICS, func() (interface{}, error) {
		return s.repo.GetEventAnalytics(ctx, eventID)
	}, &analytics)
	if err != nil {
		return nil, err
	}
	return &analytics, nil
}
