package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/onnwee/nightpulse/internal/jobs"
)

// Sweep defaults. A check-in older than MaxAge is considered
// abandoned: the user left without checking out.
const (
	DefaultMaxCheckInAge = 6 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Sweeper auto-checks-out stale check-ins in the background. Implicit
// checkouts earn no points and write no feed entries; only the crowd
// counter and the roster are corrected.
type Sweeper struct {
	repo     Repository
	venues   CrowdAdjuster
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	metrics  *jobs.Metrics
}

// NewSweeper creates a Sweeper with the default age and interval.
func NewSweeper(repo Repository, venues CrowdAdjuster, logger *slog.Logger, metrics *jobs.Metrics) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		repo:     repo,
		venues:   venues,
		maxAge:   DefaultMaxCheckInAge,
		interval: DefaultSweepInterval,
		logger:   logger,
		metrics:  metrics,
	}
}

// WithMaxAge overrides the staleness threshold.
func (s *Sweeper) WithMaxAge(maxAge time.Duration) *Sweeper {
	s.maxAge = maxAge
	return s
}

// WithInterval overrides the sweep cadence.
func (s *Sweeper) WithInterval(interval time.Duration) *Sweeper {
	s.interval = interval
	return s
}

// Run sweeps on a ticker until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("check-in sweeper started",
		"max_age", s.maxAge.String(), "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("check-in sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("check-in sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce closes every active check-in older than the threshold and
// returns how many were closed. A check-in that races with an explicit
// checkout is skipped; a venue counter failure is logged and the rest
// of the batch continues.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	start := time.Now()
	status := jobs.StatusSuccess

	stale, err := s.repo.ListActiveOlderThan(ctx, time.Now().Add(-s.maxAge))
	if err != nil {
		s.observe(jobs.StatusFailure, start)
		if s.metrics != nil {
			s.metrics.IncJobErrors(jobs.JobTypeCheckInExpiry, "database_error")
		}
		return 0, err
	}

	closed := 0
	for _, ci := range stale {
		if err := s.repo.Deactivate(ctx, ci.ID); err != nil {
			// Already checked out explicitly; nothing to undo.
			continue
		}
		if _, err := s.venues.AdjustCrowd(ctx, ci.VenueID, -1); err != nil {
			s.logger.Error("failed to decrement crowd on expiry",
				"error", err, "venue_id", ci.VenueID, "check_in_id", ci.ID)
			if s.metrics != nil {
				s.metrics.IncJobErrors(jobs.JobTypeCheckInExpiry, "crowd_adjust_error")
			}
			status = jobs.StatusFailure
		}
		closed++
	}

	if closed > 0 {
		s.logger.Info("expired stale check-ins", "count", closed)
	}
	if s.metrics != nil {
		s.metrics.AddJobItems(jobs.JobTypeCheckInExpiry, closed)
	}
	s.observe(status, start)
	return closed, nil
}

func (s *Sweeper) observe(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncJobsTotal(jobs.JobTypeCheckInExpiry, status)
	s.metrics.ObserveJobDuration(jobs.JobTypeCheckInExpiry, time.Since(start).Seconds())
}
