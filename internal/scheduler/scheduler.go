package scheduler

import (
	"mindagrow_backend/internal/config"
	"mindagrow_backend/pkg/logger"
	"mindagrow_backend/pkg/monitoring"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// StreakResetter zeroes streaks whose last activity is older than yesterday.
type StreakResetter interface {
	ResetStaleStreaks() (int64, error)
}

// SessionCleaner removes expired user sessions.
type SessionCleaner interface {
	CleanupSessions() (int64, error)
}

// Scheduler runs the nightly streak expiry and the session sweep.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       config.SchedulerConfig
	streaks   StreakResetter
	sessions  SessionCleaner
}

func New(cfg config.SchedulerConfig, streaks StreakResetter, sessions SessionCleaner) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		cfg:       cfg,
		streaks:   streaks,
		sessions:  sessions,
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	resetAt := s.cfg.StreakResetAt
	if resetAt == "" {
		resetAt = "00:05"
	}
	if _, err := s.scheduler.Every(1).Day().At(resetAt).Do(s.ResetStreaks); err != nil {
		return err
	}

	hours := s.cfg.SessionCleanupHours
	if hours <= 0 {
		hours = 6
	}
	if _, err := s.scheduler.Every(hours).Hours().Do(s.CleanupSessions); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logger.Log.Info("Scheduler started",
		zap.String("streak_reset_at", resetAt),
		zap.Int("session_cleanup_hours", hours))
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) ResetStreaks() {
	n, err := s.streaks.ResetStaleStreaks()
	if err != nil {
		monitoring.SchedulerRuns.WithLabelValues("streak_reset", "error").Inc()
		logger.Log.Error("Streak reset failed", zap.Error(err))
		return
	}
	monitoring.SchedulerRuns.WithLabelValues("streak_reset", "ok").Inc()
	logger.Log.Info("Stale streaks reset", zap.Int64("users", n))
}

func (s *Scheduler) CleanupSessions() {
	n, err := s.sessions.CleanupSessions()
	if err != nil {
		monitoring.SchedulerRuns.WithLabelValues("session_cleanup", "error").Inc()
		logger.Log.Error("Session cleanup failed", zap.Error(err))
		return
	}
	monitoring.SchedulerRuns.WithLabelValues("session_cleanup", "ok").Inc()
	logger.Log.Debug("Expired sessions removed", zap.Int64("sessions", n))
}
