package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain/giveawayengine"
	"github.com/guildify-lab/backend/internal/domain/statistic"
	"github.com/guildify-lab/backend/internal/model"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/api/discord"
	"github.com/guildify-lab/backend/pkg/errorx"
	"github.com/guildify-lab/backend/pkg/testutil"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestGiveawayDomain(
	ctx context.Context, discordEndpoint discord.IEndpoint,
) (*giveawayDomain, *giveawayengine.Engine) {
	giveawayRepo := repository.NewGiveawayRepository()
	communityRepo := repository.NewCommunityRepository()
	guildConfig := common.NewGuildConfigCache(communityRepo, &testutil.MockRedisClient{})
	engine := giveawayengine.NewEngine(
		ctx,
		giveawayRepo,
		discordEndpoint,
		statistic.NewActivityReader(&testutil.MockRedisClient{}),
		guildConfig,
		NewDiscordAnnouncer(discordEndpoint, guildConfig),
	)

	return NewGiveawayDomain(giveawayRepo, communityRepo, guildConfig, engine), engine
}

func requireErrorxCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, code, errx.Code)
}

func Test_giveawayDomain_CreateGiveaway(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain, engine := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	resp, err := domain.CreateGiveaway(ctx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		ChannelID:       "channel1",
		MessageID:       "message1",
		Title:           "Nitro drop",
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     2,
		EntryMode:       "passive",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	// The timer is armed right after the event is persisted.
	require.True(t, engine.IsArmed(resp.ID))

	got, err := domain.GetGiveaway(ctx, &model.GetGiveawayRequest{ID: resp.ID})
	require.NoError(t, err)
	require.Equal(t, "Nitro drop", got.Giveaway.Title)
	require.Equal(t, testutil.Community1.Handle, got.Giveaway.CommunityHandle)
	require.Equal(t, 2, got.Giveaway.WinnerCount)
	require.False(t, got.Giveaway.Ended)
}

func Test_giveawayDomain_CreateGiveaway_Invalid(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain, _ := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	valid := model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     1,
		EntryMode:       "passive",
	}

	tests := []struct {
		name     string
		change   func(req *model.CreateGiveawayRequest)
		wantCode errorx.Code
	}{
		{
			name:     "zero winners",
			change:   func(req *model.CreateGiveawayRequest) { req.WinnerCount = 0 },
			wantCode: errorx.BadRequest,
		},
		{
			name:     "end time in the past",
			change:   func(req *model.CreateGiveawayRequest) { req.EndTime = time.Now().Add(-time.Minute) },
			wantCode: errorx.BadRequest,
		},
		{
			name:     "negative minimum activity",
			change:   func(req *model.CreateGiveawayRequest) { req.MinimumActivity = -1 },
			wantCode: errorx.BadRequest,
		},
		{
			name:     "unknown entry mode",
			change:   func(req *model.CreateGiveawayRequest) { req.EntryMode = "raffle" },
			wantCode: errorx.BadRequest,
		},
		{
			name:     "unknown community",
			change:   func(req *model.CreateGiveawayRequest) { req.CommunityHandle = "nowhere" },
			wantCode: errorx.NotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := valid
			test.change(&req)
			_, err := domain.CreateGiveaway(ctx, &req)
			requireErrorxCode(t, err, test.wantCode)
		})
	}
}

func Test_giveawayDomain_JoinGiveaway(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	testutil.CreateFixtureDb(ctx)
	domain, _ := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	created, err := domain.CreateGiveaway(ctx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     1,
		EntryMode:       "registered",
	})
	require.NoError(t, err)

	_, err = domain.JoinGiveaway(ctx, &model.JoinGiveawayRequest{ID: created.ID})
	require.NoError(t, err)

	// Registering twice is rejected.
	_, err = domain.JoinGiveaway(ctx, &model.JoinGiveawayRequest{ID: created.ID})
	requireErrorxCode(t, err, errorx.AlreadyExists)

	// A different user can still register.
	otherCtx := xcontext.WithRequestUserID(ctx, "user2")
	_, err = domain.JoinGiveaway(otherCtx, &model.JoinGiveawayRequest{ID: created.ID})
	require.NoError(t, err)
}

func Test_giveawayDomain_JoinGiveaway_Invalid(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	testutil.CreateFixtureDb(ctx)
	domain, _ := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	passive, err := domain.CreateGiveaway(ctx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     1,
		EntryMode:       "passive",
	})
	require.NoError(t, err)

	// A passive giveaway has no registration.
	_, err = domain.JoinGiveaway(ctx, &model.JoinGiveawayRequest{ID: passive.ID})
	requireErrorxCode(t, err, errorx.BadRequest)

	_, err = domain.JoinGiveaway(ctx, &model.JoinGiveawayRequest{ID: "no-such-giveaway"})
	requireErrorxCode(t, err, errorx.NotFound)

	// An anonymous request cannot register.
	_, err = domain.JoinGiveaway(testutil.MockContext(), &model.JoinGiveawayRequest{ID: passive.ID})
	requireErrorxCode(t, err, errorx.Unauthenticated)
}

func Test_giveawayDomain_RescheduleGiveaway(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain, engine := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	created, err := domain.CreateGiveaway(ctx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     1,
		EntryMode:       "passive",
	})
	require.NoError(t, err)

	newEndTime := time.Now().Add(2 * time.Hour)
	_, err = domain.RescheduleGiveaway(ctx, &model.RescheduleGiveawayRequest{
		ID:          created.ID,
		EndTime:     newEndTime,
		WinnerCount: 3,
	})
	require.NoError(t, err)
	require.True(t, engine.IsArmed(created.ID))

	got, err := domain.GetGiveaway(ctx, &model.GetGiveawayRequest{ID: created.ID})
	require.NoError(t, err)
	require.Equal(t, 3, got.Giveaway.WinnerCount)
	require.WithinDuration(t, newEndTime, got.Giveaway.EndTime, time.Second)
}

func Test_giveawayDomain_EndGiveaway(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var announced []string
	domain, engine := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{
		GetReactionsFunc: func(
			ctx context.Context, channelID, messageID, emoji, after string, limit int,
		) ([]discord.User, error) {
			if after != "" {
				return nil, nil
			}

			return []discord.User{{ID: "user1", Username: "alice"}}, nil
		},
		SendMessageFunc: func(ctx context.Context, channelID, content string) error {
			announced = append(announced, content)
			return nil
		},
	})

	created, err := domain.CreateGiveaway(ctx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		ChannelID:       "channel1",
		MessageID:       "message1",
		Title:           "Nitro drop",
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     1,
		EntryMode:       "passive",
	})
	require.NoError(t, err)

	_, err = domain.EndGiveaway(ctx, &model.EndGiveawayRequest{ID: created.ID})
	require.NoError(t, err)
	require.False(t, engine.IsArmed(created.ID))

	require.Len(t, announced, 1)
	require.Contains(t, announced[0], "<@user1>")
	require.Contains(t, announced[0], "Nitro drop")

	got, err := domain.GetGiveaway(ctx, &model.GetGiveawayRequest{ID: created.ID})
	require.NoError(t, err)
	require.True(t, got.Giveaway.Ended)

	// Ending twice stays a no-op.
	_, err = domain.EndGiveaway(ctx, &model.EndGiveawayRequest{ID: created.ID})
	require.NoError(t, err)
	require.Len(t, announced, 1)

	_, err = domain.EndGiveaway(ctx, &model.EndGiveawayRequest{ID: "no-such-giveaway"})
	requireErrorxCode(t, err, errorx.NotFound)
}

func Test_giveawayDomain_DeleteGiveaway(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	testutil.CreateFixtureDb(ctx)
	domain, _ := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	created, err := domain.CreateGiveaway(ctx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		EndTime:         time.Now().Add(time.Hour),
		WinnerCount:     1,
		EntryMode:       "registered",
	})
	require.NoError(t, err)

	_, err = domain.JoinGiveaway(ctx, &model.JoinGiveawayRequest{ID: created.ID})
	require.NoError(t, err)

	_, err = domain.DeleteGiveaway(ctx, &model.DeleteGiveawayRequest{ID: created.ID})
	require.NoError(t, err)

	_, err = domain.GetGiveaway(ctx, &model.GetGiveawayRequest{ID: created.ID})
	requireErrorxCode(t, err, errorx.NotFound)

	_, err = domain.DeleteGiveaway(ctx, &model.DeleteGiveawayRequest{ID: created.ID})
	requireErrorxCode(t, err, errorx.NotFound)
}

func Test_giveawayDomain_TimerOutlivesRequestContext(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var mutex sync.Mutex
	var announced []string
	domain, engine := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{
		GetReactionsFunc: func(
			ctx context.Context, channelID, messageID, emoji, after string, limit int,
		) ([]discord.User, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			if after != "" {
				return nil, nil
			}

			return []discord.User{{ID: "user1", Username: "alice"}}, nil
		},
		SendMessageFunc: func(ctx context.Context, channelID, content string) error {
			mutex.Lock()
			announced = append(announced, content)
			mutex.Unlock()
			return nil
		},
	})

	// Arm from a short-lived request context, then cancel it before the
	// timer fires. The completion must still reach Discord.
	reqCtx, cancel := context.WithCancel(ctx)
	created, err := domain.CreateGiveaway(reqCtx, &model.CreateGiveawayRequest{
		CommunityHandle: testutil.Community1.Handle,
		ChannelID:       "channel1",
		MessageID:       "message1",
		Title:           "Nitro drop",
		EndTime:         time.Now().Add(20 * time.Millisecond),
		WinnerCount:     1,
		EntryMode:       "passive",
	})
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(announced) == 1
	}, time.Second, 5*time.Millisecond)

	mutex.Lock()
	require.Contains(t, announced[0], "<@user1>")
	mutex.Unlock()

	got, err := domain.GetGiveaway(ctx, &model.GetGiveawayRequest{ID: created.ID})
	require.NoError(t, err)
	require.True(t, got.Giveaway.Ended)
	require.False(t, engine.IsArmed(created.ID))
}

func Test_giveawayDomain_UpdateGiveawaySettings(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain, _ := newTestGiveawayDomain(ctx, &testutil.MockDiscordEndpoint{})

	// Warm the cache first so the update has something to invalidate.
	community, err := domain.guildConfig.Get(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Community1.GiveawayEmote, community.GiveawayEmote)

	_, err = domain.UpdateGiveawaySettings(ctx, &model.UpdateGiveawaySettingsRequest{
		CommunityHandle: testutil.Community1.Handle,
		GiveawayEmote:   "🎁",
		NotifyWinners:   false,
	})
	require.NoError(t, err)

	community, err = domain.guildConfig.Get(ctx, testutil.Community1.ID)
	require.NoError(t, err)
	require.Equal(t, "🎁", community.GiveawayEmote)
	require.False(t, community.NotifyWinners)

	_, err = domain.UpdateGiveawaySettings(ctx, &model.UpdateGiveawaySettingsRequest{
		CommunityHandle: "no-such-community",
	})
	requireErrorxCode(t, err, errorx.NotFound)
}
