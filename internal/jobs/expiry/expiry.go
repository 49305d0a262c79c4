package expiry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Job sweeps suspensions whose end date has passed, flipping them to expired
// and reactivating the vendors. Warnings and bans carry no end date and are
// left alone.
type Job struct {
	sweeper disciplineSweeper
	logger  *zap.Logger
}

type disciplineSweeper interface {
	ProcessExpired(ctx context.Context) (int, error)
}

func New(sweeper disciplineSweeper, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		sweeper: sweeper,
		logger:  logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return nil
	}

	expired, err := j.sweeper.ProcessExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep expired disciplines: %w", err)
	}
	if expired > 0 {
		j.logger.Info("expired lapsed suspensions", zap.Int("count", expired))
	}
	return nil
}
