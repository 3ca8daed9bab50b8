package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain/giveawayengine"
	"github.com/guildify-lab/backend/pkg/api/discord"
)

// discordAnnouncer delivers giveaway outcomes to the giveaway channel. The
// engine only sees the Announcer interface.
type discordAnnouncer struct {
	discordEndpoint discord.IEndpoint
	guildConfig     *common.GuildConfigCache
}

func NewDiscordAnnouncer(
	discordEndpoint discord.IEndpoint,
	guildConfig *common.GuildConfigCache,
) *discordAnnouncer {
	return &discordAnnouncer{
		discordEndpoint: discordEndpoint,
		guildConfig:     guildConfig,
	}
}

func (a *discordAnnouncer) Announce(ctx context.Context, result *giveawayengine.GiveawayResult) error {
	community, err := a.guildConfig.Get(ctx, result.Event.CommunityID)
	if err != nil {
		return err
	}

	if !community.NotifyWinners {
		return nil
	}

	var b strings.Builder
	if community.GiveawayPingRoleID != "" {
		fmt.Fprintf(&b, "<@&%s> ", community.GiveawayPingRoleID)
	}

	if result.InsufficientEligible {
		fmt.Fprintf(&b, "The giveaway **%s** ended without enough eligible entrants.", result.Event.Title)
	} else {
		mentions := make([]string, 0, len(result.Winners))
		for _, winner := range result.Winners {
			mentions = append(mentions, fmt.Sprintf("<@%s>", winner.UserID))
		}

		fmt.Fprintf(&b, "Congratulations %s! You won the giveaway **%s**.",
			strings.Join(mentions, ", "), result.Event.Title)
	}

	return a.discordEndpoint.SendMessage(ctx, result.Event.ChannelID, b.String())
}
