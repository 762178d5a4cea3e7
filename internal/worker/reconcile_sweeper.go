package worker

import (
	"context"
	"time"

	"github.com/lshigami/attempt-engine/config"
	"github.com/lshigami/attempt-engine/internal/service"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// ReconcileSweeper periodically force-finishes attempts that outlived their
// time budget plus grace.
type ReconcileSweeper struct {
	attempts service.AttemptService
	interval time.Duration
	batch    int

	stop chan struct{}
	done chan struct{}
}

func NewReconcileSweeper(attempts service.AttemptService, cfg *config.Config) *ReconcileSweeper {
	return &ReconcileSweeper{
		attempts: attempts,
		interval: cfg.Engine.SweepInterval,
		batch:    cfg.Engine.SweepBatch,
	}
}

// RegisterReconcileSweeper ties the sweeper to the fx lifecycle.
func RegisterReconcileSweeper(lc fx.Lifecycle, sweeper *ReconcileSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sweeper.Stop(ctx)
		},
	})
}

// Start launches the sweep loop. A non-positive interval leaves it off.
func (s *ReconcileSweeper) Start() {
	if s.interval <= 0 {
		log.Info().Msg("Reconcile sweeper disabled")
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		log.Info().Dur("interval", s.interval).Int("batch", s.batch).Msg("Reconcile sweeper started")
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.SweepOnce(context.Background())
			}
		}
	}()
}

func (s *ReconcileSweeper) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	select {
	case <-s.done:
		log.Info().Msg("Reconcile sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepOnce runs a single reconcile pass and returns the number of attempts
// it finalized.
func (s *ReconcileSweeper) SweepOnce(ctx context.Context) int {
	report, err := s.attempts.ReconcileAll(ctx, s.batch)
	if err != nil {
		log.Error().Err(err).Msg("Reconcile sweep failed")
		return 0
	}
	if report.Finalized > 0 || report.Failed > 0 {
		log.Info().Int("examined", report.Examined).Int("finalized", report.Finalized).Int("failed", report.Failed).Msg("Reconcile sweep finished")
	}
	return report.Finalized
}
