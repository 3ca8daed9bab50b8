package giveawayengine

import (
	"context"
	"errors"
	"testing"

	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain/statistic"
	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/api/discord"
	"github.com/guildify-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestEngine(
	ctx context.Context, discordEndpoint discord.IEndpoint, redisClient *testutil.MockRedisClient,
) *Engine {
	return NewEngine(
		ctx,
		repository.NewGiveawayRepository(),
		discordEndpoint,
		statistic.NewActivityReader(redisClient),
		common.NewGuildConfigCache(repository.NewCommunityRepository(), redisClient),
		nil,
	)
}

func Test_Engine_filterEligible_RequiredRoles(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := newTestEngine(ctx, &testutil.MockDiscordEndpoint{}, &testutil.MockRedisClient{})

	event := &entity.GiveawayEvent{
		Base:          entity.Base{ID: "giveaway1"},
		CommunityID:   testutil.Community1.ID,
		RequiredRoles: entity.Array[string]{"role1", "role2"},
	}

	eligible := engine.filterEligible(ctx, event, []Candidate{
		{UserID: "both", Roles: []string{"role1", "role2", "role3"}},
		{UserID: "one", Roles: []string{"role1"}},
		{UserID: "none", Roles: []string{}},
	})

	// Every required role must be held, not just one of them.
	require.Len(t, eligible, 1)
	require.Equal(t, "both", eligible[0].UserID)
}

func Test_Engine_filterEligible_LazyRoleLookup(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	lookups := 0
	engine := newTestEngine(ctx, &testutil.MockDiscordEndpoint{
		GetMemberFunc: func(ctx context.Context, guildID, userID string) (discord.Member, error) {
			lookups++
			require.Equal(t, testutil.Community1.DiscordGuildID, guildID)
			if userID == "departed" {
				return discord.Member{}, discord.ErrUnknownMember
			}

			return discord.Member{
				User:  discord.User{ID: userID},
				Roles: []string{"role1"},
			}, nil
		},
	}, &testutil.MockRedisClient{})

	event := &entity.GiveawayEvent{
		Base:          entity.Base{ID: "giveaway1"},
		CommunityID:   testutil.Community1.ID,
		RequiredRoles: entity.Array[string]{"role1"},
	}

	eligible := engine.filterEligible(ctx, event, []Candidate{
		{UserID: "known", Roles: []string{"role1"}},
		{UserID: "unknown"},
		{UserID: "departed"},
	})

	// Only candidates with unknown roles hit the directory; lookup failures
	// drop the candidate, not the pass.
	require.Equal(t, 2, lookups)
	require.Len(t, eligible, 2)
	require.Equal(t, "known", eligible[0].UserID)
	require.Equal(t, "unknown", eligible[1].UserID)
}

func Test_Engine_filterEligible_NoRoleRequirementSkipsLookup(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := newTestEngine(ctx, &testutil.MockDiscordEndpoint{
		GetMemberFunc: func(ctx context.Context, guildID, userID string) (discord.Member, error) {
			t.Fatal("unexpected member lookup")
			return discord.Member{}, nil
		},
	}, &testutil.MockRedisClient{})

	event := &entity.GiveawayEvent{
		Base:        entity.Base{ID: "giveaway1"},
		CommunityID: testutil.Community1.ID,
	}

	eligible := engine.filterEligible(ctx, event, []Candidate{{UserID: "user1"}, {UserID: "user2"}})
	require.Len(t, eligible, 2)
}

func Test_Engine_filterEligible_ActivityThreshold(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	scores := map[string]float64{"active": 50, "quiet": 5}
	engine := newTestEngine(ctx, &testutil.MockDiscordEndpoint{}, &testutil.MockRedisClient{
		ZScoreFunc: func(ctx context.Context, key, member string) (float64, error) {
			if member == "flaky" {
				return 0, errors.New("connection refused")
			}

			return scores[member], nil
		},
	})

	event := &entity.GiveawayEvent{
		Base:            entity.Base{ID: "giveaway1"},
		CommunityID:     testutil.Community1.ID,
		MinimumActivity: 10,
	}

	eligible := engine.filterEligible(ctx, event, []Candidate{
		{UserID: "active"},
		{UserID: "quiet"},
		{UserID: "flaky"},
	})

	require.Len(t, eligible, 1)
	require.Equal(t, "active", eligible[0].UserID)
}

func Test_Engine_filterEligible_ZeroThresholdSkipsLookup(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := newTestEngine(ctx, &testutil.MockDiscordEndpoint{}, &testutil.MockRedisClient{
		ZScoreFunc: func(ctx context.Context, key, member string) (float64, error) {
			t.Fatal("unexpected activity lookup")
			return 0, nil
		},
	})

	event := &entity.GiveawayEvent{
		Base:        entity.Base{ID: "giveaway1"},
		CommunityID: testutil.Community1.ID,
	}

	eligible := engine.filterEligible(ctx, event, []Candidate{{UserID: "user1"}})
	require.Len(t, eligible, 1)
}
