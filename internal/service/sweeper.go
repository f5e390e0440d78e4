package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/logging"
)

// SweepAbandoned runs every in-progress battle untouched for olderThan to
// completion through RunBattle. It returns how many battles it completed.
func (s *BattleService) SweepAbandoned(ctx context.Context, olderThan time.Duration) (int, error) {
	sctx, cancel := s.storeCtx(ctx)
	ids, err := s.repo.FindAbandonedBattles(sctx, s.clock.Now().Add(-olderThan))
	cancel()
	if err != nil {
		return 0, storeError("find abandoned battles", err)
	}

	completed := 0
	for _, id := range ids {
		_, err := s.RunBattle(ctx, id)
		switch {
		case err == nil:
			completed++
		case errors.Is(err, ErrConflict):
			// finished by someone else in the meantime
		default:
			logging.Error("failed to finish abandoned battle", err, logging.Fields{constants.LogFieldBattleID: id})
		}
	}
	if completed > 0 {
		logging.Info("abandoned battles finished", logging.Fields{"count": completed})
	}
	return completed, nil
}

// StartSweeper schedules SweepAbandoned every interval. The caller shuts the
// returned scheduler down.
func StartSweeper(svc *BattleService, interval, olderThan time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := svc.SweepAbandoned(context.Background(), olderThan); err != nil {
				logging.Error("abandoned battle sweep failed", err, nil)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	logging.Info("battle sweeper started", logging.Fields{"interval": interval.String(), "abandoned_after": olderThan.String()})
	return sched, nil
}
