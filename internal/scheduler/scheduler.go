package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"comedor/internal/config"
	applog "comedor/internal/log"
	"comedor/internal/trash"
)

// Scheduler runs the periodic trash sweep on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	database *gorm.DB
	cfg      config.SweepConfig
}

// New builds a Scheduler; Start must be called to begin sweeping.
func New(cfg config.SweepConfig, database *gorm.DB) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		database: database,
		cfg:      cfg,
	}
}

// Start registers the sweep job and starts the cron loop. When configured,
// one sweep also runs immediately so a long-stopped instance catches up on
// entities that expired while it was down.
func (s *Scheduler) Start() error {
	if s.database == nil {
		return fmt.Errorf("scheduler requires a database handle")
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runSweep); err != nil {
		return fmt.Errorf("schedule trash sweep %q: %w", s.cfg.Schedule, err)
	}

	if s.cfg.OnStart {
		s.runSweep()
	}

	s.cron.Start()
	applog.Info(context.Background(), "sweep scheduler started", "schedule", s.cfg.Schedule)
	return nil
}

// Stop halts the cron loop. A sweep already in flight runs to completion.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	applog.Info(context.Background(), "sweep scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := trash.Sweep(ctx, s.database, time.Now().UTC())
	if err != nil {
		applog.Error(ctx, "scheduled trash sweep failed", "error", err)
		return
	}
	if report.Total() > 0 {
		applog.Info(ctx, "scheduled trash sweep purged entities",
			"recipes", report.Purged[trash.KindRecipe],
			"projections", report.Purged[trash.KindProjection],
		)
	}
}
