package testutil

import (
	"context"
	"time"

	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/internal/repository"
)

var (
	Community1 = entity.Community{
		Base:                  entity.Base{ID: "community1"},
		Handle:                "guildify",
		Name:                  "Guildify",
		DiscordGuildID:        "guild1",
		GiveawayEmote:         "🎉",
		GiveawayFallbackEmote: "🎊",
		NotifyWinners:         true,
	}

	Community2 = entity.Community{
		Base:           entity.Base{ID: "community2"},
		Handle:         "silent",
		Name:           "Silent",
		DiscordGuildID: "guild2",
		NotifyWinners:  false,
	}
)

func CreateFixtureDb(ctx context.Context) {
	InsertCommunities(ctx)
}

func InsertCommunities(ctx context.Context) {
	communityRepo := repository.NewCommunityRepository()

	for _, community := range []entity.Community{Community1, Community2} {
		community := community
		if err := communityRepo.Create(ctx, &community); err != nil {
			panic(err)
		}
	}
}

// SampleGiveaway persists an active passive-mode giveaway in Community1
// ending at the given time.
func SampleGiveaway(ctx context.Context, id string, endTime time.Time) *entity.GiveawayEvent {
	event := &entity.GiveawayEvent{
		Base:        entity.Base{ID: id},
		CommunityID: Community1.ID,
		ChannelID:   "channel1",
		MessageID:   "message1",
		Title:       "Sample giveaway",
		EndTime:     endTime,
		WinnerCount: 1,
		EntryMode:   entity.EntryModePassive,
	}

	if err := repository.NewGiveawayRepository().CreateEvent(ctx, event); err != nil {
		panic(err)
	}

	return event
}
