package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

// Scheduler runs the periodic housekeeping jobs, currently the escrow
// sweep that releases held funds once their dispute window closes.
type Scheduler struct {
	cron   *cron.Cron
	escrow service.EscrowService
	cfg    *config.EscrowConfig
}

func New(escrow service.EscrowService, cfg *config.EscrowConfig) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		escrow: escrow,
		cfg:    cfg,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.sweepEscrows)
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"escrow_sweep": s.cfg.SweepSchedule,
	})
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) sweepEscrows() {
	released, err := s.escrow.SweepExpired(time.Now())
	if err != nil {
		logger.Error("Escrow sweep failed", err)
		return
	}
	if released > 0 {
		logger.Info("Escrow sweep released funds", map[string]interface{}{
			"count": released,
		})
	}
}
