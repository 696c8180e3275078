package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshScheduler periodically rebuilds every provider's alias entries on a
// cron schedule, so models added or retired upstream become visible without
// a restart.
type RefreshScheduler struct {
	directory *Directory
	cron      *cron.Cron
	schedule  string
	timeout   time.Duration

	// OnPass, when set, is invoked after every refresh pass, successful or
	// not. Used to push alias counts into metrics.
	OnPass func()
}

// NewRefreshScheduler creates a scheduler for the directory.
// The schedule uses standard 5-field cron syntax (e.g., "0 */6 * * *").
// The timeout bounds each full refresh pass.
func NewRefreshScheduler(directory *Directory, schedule string, timeout time.Duration) (*RefreshScheduler, error) {
	s := &RefreshScheduler{
		directory: directory,
		cron:      cron.New(),
		schedule:  schedule,
		timeout:   timeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins executing the schedule in a background goroutine.
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	slog.Info("model refresh scheduler started", "schedule", s.schedule)
}

// Stop halts the schedule and waits for any in-flight refresh to finish.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("model refresh scheduler stopped")
}

func (s *RefreshScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if s.OnPass != nil {
			s.OnPass()
		}
	}()

	if err := s.directory.RefreshAll(ctx); err != nil {
		slog.Warn("scheduled model refresh completed with failures",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	slog.Info("scheduled model refresh completed",
		"providers", len(s.directory.Providers()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
