package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"carhive/api/internal/repository"
	"carhive/api/internal/service"
)

// Scheduler runs the periodic maintenance work: clearing expired reset
// tokens and keeping the dashboard cache warm.
type Scheduler struct {
	cron      *cron.Cron
	users     *repository.UserRepository
	dashboard *service.DashboardService
	log       zerolog.Logger
}

func NewScheduler(users *repository.UserRepository, dashboard *service.DashboardService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		users:     users,
		dashboard: dashboard,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.purgeResetTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 10m", s.warmDashboard); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.users.PurgeExpiredResetTokens(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reset token purge failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("expired reset tokens cleared")
	}
}

func (s *Scheduler) warmDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.dashboard.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("dashboard warm-up failed")
	}
}
