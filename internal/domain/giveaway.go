package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain/giveawayengine"
	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/internal/model"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/enum"
	"github.com/guildify-lab/backend/pkg/errorx"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GiveawayDomain interface {
	CreateGiveaway(context.Context, *model.CreateGiveawayRequest) (*model.CreateGiveawayResponse, error)
	GetGiveaway(context.Context, *model.GetGiveawayRequest) (*model.GetGiveawayResponse, error)
	JoinGiveaway(context.Context, *model.JoinGiveawayRequest) (*model.JoinGiveawayResponse, error)
	RescheduleGiveaway(context.Context, *model.RescheduleGiveawayRequest) (*model.RescheduleGiveawayResponse, error)
	EndGiveaway(context.Context, *model.EndGiveawayRequest) (*model.EndGiveawayResponse, error)
	DeleteGiveaway(context.Context, *model.DeleteGiveawayRequest) (*model.DeleteGiveawayResponse, error)
	UpdateGiveawaySettings(context.Context, *model.UpdateGiveawaySettingsRequest) (*model.UpdateGiveawaySettingsResponse, error)
}

type giveawayDomain struct {
	giveawayRepo  repository.GiveawayRepository
	communityRepo repository.CommunityRepository
	guildConfig   *common.GuildConfigCache
	engine        *giveawayengine.Engine
}

func NewGiveawayDomain(
	giveawayRepo repository.GiveawayRepository,
	communityRepo repository.CommunityRepository,
	guildConfig *common.GuildConfigCache,
	engine *giveawayengine.Engine,
) *giveawayDomain {
	return &giveawayDomain{
		giveawayRepo:  giveawayRepo,
		communityRepo: communityRepo,
		guildConfig:   guildConfig,
		engine:        engine,
	}
}

func (d *giveawayDomain) CreateGiveaway(
	ctx context.Context, req *model.CreateGiveawayRequest,
) (*model.CreateGiveawayResponse, error) {
	if req.WinnerCount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "The number of winners must be a positive number")
	}

	if !req.EndTime.After(time.Now()) {
		return nil, errorx.New(errorx.BadRequest, "End time must be in the future")
	}

	if req.MinimumActivity < 0 {
		return nil, errorx.New(errorx.BadRequest, "Minimum activity must not be negative")
	}

	entryMode, err := enum.ToEnum[entity.GiveawayEntryMode](req.EntryMode)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid entry mode: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid entry mode %s", req.EntryMode)
	}

	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	event := &entity.GiveawayEvent{
		Base:            entity.Base{ID: uuid.NewString()},
		CommunityID:     community.ID,
		ChannelID:       req.ChannelID,
		MessageID:       req.MessageID,
		Title:           req.Title,
		EndTime:         req.EndTime,
		WinnerCount:     req.WinnerCount,
		EntryMode:       entryMode,
		RequiredRoles:   req.RequiredRoles,
		MinimumActivity: req.MinimumActivity,
	}

	if err := d.giveawayRepo.CreateEvent(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create giveaway: %v", err)
		return nil, errorx.Unknown
	}

	// Persist first, then arm. A crash in between is repaired by the
	// reconcile job.
	d.engine.Arm(event)

	return &model.CreateGiveawayResponse{ID: event.ID}, nil
}

func (d *giveawayDomain) GetGiveaway(
	ctx context.Context, req *model.GetGiveawayRequest,
) (*model.GetGiveawayResponse, error) {
	event, err := d.giveawayRepo.GetEventByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot get giveaway: %v", err)
		return nil, errorx.Unknown
	}

	community, err := d.guildConfig.Get(ctx, event.CommunityID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetGiveawayResponse{Giveaway: convertGiveaway(event, community.Handle)}, nil
}

func (d *giveawayDomain) JoinGiveaway(
	ctx context.Context, req *model.JoinGiveawayRequest,
) (*model.JoinGiveawayResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not determined user")
	}

	event, err := d.giveawayRepo.GetEventByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot get giveaway: %v", err)
		return nil, errorx.Unknown
	}

	if event.EntryMode != entity.EntryModeRegistered {
		return nil, errorx.New(errorx.BadRequest, "This giveaway does not accept registrations")
	}

	if event.Ended || !event.EndTime.After(time.Now()) {
		return nil, errorx.New(errorx.Unavailable, "The giveaway has ended")
	}

	entrant := &entity.GiveawayEntrant{
		Base:            entity.Base{ID: uuid.NewString()},
		GiveawayEventID: event.ID,
		UserID:          userID,
	}

	if err := d.giveawayRepo.CreateEntrant(ctx, entrant); err != nil {
		// The unique index on (event, user) rejects duplicates, including
		// two concurrent registrations. Re-read to tell them apart from a
		// store failure.
		if _, getErr := d.giveawayRepo.GetEntrant(ctx, event.ID, userID); getErr == nil {
			return nil, errorx.New(errorx.AlreadyExists, "Already joined this giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot create entrant: %v", err)
		return nil, errorx.Unknown
	}

	return &model.JoinGiveawayResponse{}, nil
}

func (d *giveawayDomain) RescheduleGiveaway(
	ctx context.Context, req *model.RescheduleGiveawayRequest,
) (*model.RescheduleGiveawayResponse, error) {
	if req.WinnerCount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "The number of winners must be a positive number")
	}

	event, err := d.giveawayRepo.GetEventByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot get giveaway: %v", err)
		return nil, errorx.Unknown
	}

	if event.Ended {
		return nil, errorx.New(errorx.Unavailable, "The giveaway has ended")
	}

	event.EndTime = req.EndTime
	event.WinnerCount = req.WinnerCount
	if err := d.giveawayRepo.UpdateEvent(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update giveaway: %v", err)
		return nil, errorx.Unknown
	}

	// Re-arming replaces the previous timer for this id.
	d.engine.Arm(event)

	return &model.RescheduleGiveawayResponse{}, nil
}

// EndGiveaway manually triggers the same completion path a timer fire takes.
// If a timer fires concurrently, exactly one of the two publishes a result.
func (d *giveawayDomain) EndGiveaway(
	ctx context.Context, req *model.EndGiveawayRequest,
) (*model.EndGiveawayResponse, error) {
	if err := d.engine.Complete(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete giveaway: %v", err)
		return nil, errorx.Unknown
	}

	return &model.EndGiveawayResponse{}, nil
}

// DeleteGiveaway removes the event and its registrations. The armed timer is
// left for the reconcile job to discover and disarm.
func (d *giveawayDomain) DeleteGiveaway(
	ctx context.Context, req *model.DeleteGiveawayRequest,
) (*model.DeleteGiveawayResponse, error) {
	if _, err := d.giveawayRepo.GetEventByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found giveaway")
		}

		xcontext.Logger(ctx).Errorf("Cannot get giveaway: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.giveawayRepo.DeleteEntrantsByEventID(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete entrants: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.giveawayRepo.DeleteEvent(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete giveaway: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.DeleteGiveawayResponse{}, nil
}

func (d *giveawayDomain) UpdateGiveawaySettings(
	ctx context.Context, req *model.UpdateGiveawaySettingsRequest,
) (*model.UpdateGiveawaySettingsResponse, error) {
	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	err = d.communityRepo.UpdateSettingsByID(ctx, community.ID, entity.Community{
		GiveawayEmote:         req.GiveawayEmote,
		GiveawayFallbackEmote: req.GiveawayFallbackEmote,
		GiveawayPingRoleID:    req.GiveawayPingRoleID,
		NotifyWinners:         req.NotifyWinners,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update settings of community %s: %v", community.ID, err)
		return nil, errorx.Unknown
	}

	// Future fires must not announce with the settings cached before the
	// write.
	d.guildConfig.Invalidate(ctx, community.ID)

	return &model.UpdateGiveawaySettingsResponse{}, nil
}

func convertGiveaway(event *entity.GiveawayEvent, communityHandle string) model.Giveaway {
	return model.Giveaway{
		ID:              event.ID,
		CommunityHandle: communityHandle,
		ChannelID:       event.ChannelID,
		MessageID:       event.MessageID,
		Title:           event.Title,
		EndTime:         event.EndTime,
		Ended:           event.Ended,
		WinnerCount:     event.WinnerCount,
		EntryMode:       string(event.EntryMode),
		RequiredRoles:   event.RequiredRoles,
		MinimumActivity: event.MinimumActivity,
	}
}
