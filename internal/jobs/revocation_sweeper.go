package jobs

import (
	"context"
	"time"

	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/services"
)

// RevocationSweeper periodically removes expired revocation records. It is
// pure housekeeping: correctness never depends on it because expired rows
// are already ignored on read.
type RevocationSweeper struct {
	log      *logger.Logger
	store    services.TokenRevocationStore
	interval time.Duration
}

func NewRevocationSweeper(baseLog *logger.Logger, store services.TokenRevocationStore, interval time.Duration) *RevocationSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RevocationSweeper{
		log:      baseLog.With("job", "RevocationSweeper"),
		store:    store,
		interval: interval,
	}
}

func (rs *RevocationSweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rs.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := rs.store.SweepExpired(ctx)
				if err != nil {
					rs.log.Warn("revocation sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					rs.log.Info("revocation sweep complete", "removed", removed)
				}
			}
		}
	}()
}
