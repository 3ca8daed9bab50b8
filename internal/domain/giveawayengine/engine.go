package giveawayengine

import (
	"context"
	"errors"
	"time"

	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain/statistic"
	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/api/discord"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Candidate is a raw entrant considered for selection. Roles is nil when the
// collection strategy could not know them; the eligibility filter resolves
// roles lazily in that case.
type Candidate struct {
	UserID   string
	Username string
	Roles    []string
}

// GiveawayResult is handed to the announcer after the terminal transition.
// InsufficientEligible means fewer eligible candidates than requested
// winners; it carries zero winners, never a partial list.
type GiveawayResult struct {
	Event                *entity.GiveawayEvent
	Winners              []Candidate
	InsufficientEligible bool
}

type Announcer interface {
	Announce(ctx context.Context, result *GiveawayResult) error
}

// Engine runs the giveaway completion pipeline: collect candidates, filter
// eligibility, sample winners, end the event exactly once.
type Engine struct {
	giveawayRepo    repository.GiveawayRepository
	discordEndpoint discord.IEndpoint
	activityReader  statistic.ActivityReader
	guildConfig     *common.GuildConfigCache
	announcer       Announcer
	scheduler       *Scheduler
}

// NewEngine builds the engine around a long-lived context. Timer fires run
// the completion pipeline on that context, never on the context of the call
// that armed the timer, so a finished request cannot poison a later fire.
func NewEngine(
	ctx context.Context,
	giveawayRepo repository.GiveawayRepository,
	discordEndpoint discord.IEndpoint,
	activityReader statistic.ActivityReader,
	guildConfig *common.GuildConfigCache,
	announcer Announcer,
) *Engine {
	engine := &Engine{
		giveawayRepo:    giveawayRepo,
		discordEndpoint: discordEndpoint,
		activityReader:  activityReader,
		guildConfig:     guildConfig,
		announcer:       announcer,
	}

	engine.scheduler = NewScheduler(func(eventID string) {
		if err := engine.Complete(ctx, eventID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot complete giveaway %s: %v", eventID, err)
		}
	})

	return engine
}

func (e *Engine) Arm(event *entity.GiveawayEvent) {
	e.scheduler.Arm(event)
}

func (e *Engine) Disarm(eventID string) bool {
	return e.scheduler.Disarm(eventID)
}

func (e *Engine) IsArmed(eventID string) bool {
	return e.scheduler.IsArmed(eventID)
}

func (e *Engine) ArmedIDs() []string {
	return e.scheduler.ArmedIDs()
}

// Recover arms timers for every active event due within the configured
// horizon. It runs once at startup to bridge process restarts. Events due
// beyond the horizon are left for the reconcile job, bounding the number of
// in-memory timers. Recovery never fails the startup.
func (e *Engine) Recover(ctx context.Context) {
	horizon := xcontext.Configs(ctx).Giveaway.RecoveryHorizon
	events, err := e.giveawayRepo.GetActiveEvents(ctx, time.Now().Add(horizon))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load active giveaways for recovery: %v", err)
		return
	}

	for i := range events {
		e.scheduler.Arm(&events[i])
	}

	xcontext.Logger(ctx).Infof("Recovered %d giveaway timers", len(events))
}

// Complete runs the completion pipeline for one event. Both timer fires and
// manual triggers enter here. The event is re-read so the pipeline always
// works on current persisted state, and the terminal transition is claimed
// with a conditional update, so a lost race ends as a silent no-op.
func (e *Engine) Complete(ctx context.Context, eventID string) error {
	event, err := e.giveawayRepo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted out from under us; drop the timer if any is left.
			e.scheduler.Disarm(eventID)
		}

		return err
	}

	if event.Ended {
		e.scheduler.Disarm(eventID)
		return nil
	}

	candidates, err := e.collect(ctx, event)
	if err != nil {
		return err
	}

	eligible := e.filterEligible(ctx, event, candidates)
	winners, enough := SampleWinners(eligible, event.WinnerCount)

	if err := e.giveawayRepo.MarkEnded(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A concurrent completion claimed the event first.
			xcontext.Logger(ctx).Debugf("Giveaway %s already ended by a concurrent trigger", eventID)
			return nil
		}

		return err
	}

	e.scheduler.Disarm(eventID)

	result := &GiveawayResult{
		Event:                event,
		Winners:              winners,
		InsufficientEligible: !enough,
	}

	if e.announcer != nil {
		if err := e.announcer.Announce(ctx, result); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot announce giveaway %s: %v", eventID, err)
		}
	}

	return nil
}
