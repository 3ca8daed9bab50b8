package cron

import (
	"context"
	"errors"
	"time"

	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain/giveawayengine"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// ReconcileGiveawaysCronJob periodically repairs drift between the giveaway
// store and the in-memory timer registry: timers for deleted or completed
// events are disarmed, active events without a timer are re-armed. This is
// what makes wall-clock timers safe as the only in-memory scheduling state.
type ReconcileGiveawaysCronJob struct {
	giveawayRepo repository.GiveawayRepository
	engine       *giveawayengine.Engine
	guildConfig  *common.GuildConfigCache
	interval     time.Duration
}

func NewReconcileGiveawaysCronJob(
	giveawayRepo repository.GiveawayRepository,
	engine *giveawayengine.Engine,
	guildConfig *common.GuildConfigCache,
	interval time.Duration,
) *ReconcileGiveawaysCronJob {
	if interval <= 0 {
		interval = time.Hour
	}

	return &ReconcileGiveawaysCronJob{
		giveawayRepo: giveawayRepo,
		engine:       engine,
		guildConfig:  guildConfig,
		interval:     interval,
	}
}

func (job *ReconcileGiveawaysCronJob) Do(ctx context.Context) {
	activeIDs, err := job.giveawayRepo.GetActiveEventIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active giveaways: %v", err)
		return
	}

	active := make(map[string]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = struct{}{}
	}

	// Disarm timers whose event has been deleted or completed elsewhere.
	for _, armedID := range job.engine.ArmedIDs() {
		if _, ok := active[armedID]; !ok {
			job.engine.Disarm(armedID)
			xcontext.Logger(ctx).Infof("Disarmed orphaned giveaway timer %s", armedID)
		}
	}

	// Arm active events that lost their timer, e.g. to a crash between
	// persist and arm.
	for _, id := range activeIDs {
		if job.engine.IsArmed(id) {
			continue
		}

		event, err := job.giveawayRepo.GetEventByID(ctx, id)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot get giveaway %s: %v", id, err)
			}

			continue
		}

		job.engine.Arm(event)
		xcontext.Logger(ctx).Infof("Re-armed giveaway timer %s", id)
	}

	// Unrelated housekeeping on the same cadence.
	if pruned := job.guildConfig.Prune(); pruned > 0 {
		xcontext.Logger(ctx).Infof("Pruned %d expired guild config entries", pruned)
	}
}

func (job *ReconcileGiveawaysCronJob) RunNow() bool {
	return true
}

func (job *ReconcileGiveawaysCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
