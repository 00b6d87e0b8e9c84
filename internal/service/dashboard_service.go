package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"carhive/api/internal/apperr"
	"carhive/api/internal/config"
	"carhive/api/internal/models"
)

const dashboardCacheKey = "dashboard:summary"

type StatsStore interface {
	CountBookings(ctx context.Context) (int64, error)
	TopProviders(ctx context.Context, limit int) ([]models.ProviderBookingCount, error)
	TopCarTypes(ctx context.Context, limit int) ([]models.CarTypeCount, error)
	FinanceTotals(ctx context.Context) (income float64, outcome float64, err error)
}

type DashboardService struct {
	stats StatsStore
	cache *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewDashboardService(stats StatsStore, cache *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		stats: stats,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

// Get serves the dashboard from cache when fresh, falling back to direct
// queries. Cache failures degrade silently to the database path.
func (s *DashboardService) Get(ctx context.Context) (models.Dashboard, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var cached models.Dashboard
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.log.Warn().Err(err).Msg("dashboard cache read failed")
		}
	}

	dashboard, err := s.compute(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}

	s.store(ctx, dashboard)
	return dashboard, nil
}

// Refresh recomputes the dashboard and rewrites the cache. Used by the
// warm-up job.
func (s *DashboardService) Refresh(ctx context.Context) error {
	dashboard, err := s.compute(ctx)
	if err != nil {
		return err
	}
	s.store(ctx, dashboard)
	return nil
}

func (s *DashboardService) compute(ctx context.Context) (models.Dashboard, error) {
	total, err := s.stats.CountBookings(ctx)
	if err != nil {
		return models.Dashboard{}, apperr.Wrap(err, "could not load dashboard")
	}

	topProviders, err := s.stats.TopProviders(ctx, 3)
	if err != nil {
		return models.Dashboard{}, apperr.Wrap(err, "could not load dashboard")
	}

	topTypes, err := s.stats.TopCarTypes(ctx, 3)
	if err != nil {
		return models.Dashboard{}, apperr.Wrap(err, "could not load dashboard")
	}

	income, outcome, err := s.stats.FinanceTotals(ctx)
	if err != nil {
		return models.Dashboard{}, apperr.Wrap(err, "could not load dashboard")
	}

	return models.Dashboard{
		TotalBookings: total,
		TopProviders:  topProviders,
		TopCarTypes:   topTypes,
		TotalIncome:   income,
		TotalOutcome:  outcome,
	}, nil
}

func (s *DashboardService) store(ctx context.Context, dashboard models.Dashboard) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, s.cfg.Dashboard.CacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache write failed")
	}
}
