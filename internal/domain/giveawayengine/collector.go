package giveawayengine

import (
	"context"
	"errors"
	"sync"

	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/pkg/api/discord"
	"github.com/guildify-lab/backend/pkg/errorx"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

// Discord caps reaction pages at 100 users.
const reactionPageLimit = 100

func (e *Engine) collect(ctx context.Context, event *entity.GiveawayEvent) ([]Candidate, error) {
	community, err := e.guildConfig.Get(ctx, event.CommunityID)
	if err != nil {
		return nil, err
	}

	switch event.EntryMode {
	case entity.EntryModePassive:
		return e.collectPassive(ctx, event, community), nil
	case entity.EntryModeRegistered:
		return e.collectRegistered(ctx, event, community)
	}

	return nil, errorx.New(errorx.BadRequest, "Unknown entry mode %s", event.EntryMode)
}

// collectPassive gathers everyone who reacted to the anchor message with the
// community's giveaway emote, up to the configured bound. If the primary
// emote yields nobody it retries once with the fallback emote. Partial
// collector failures return whatever was collected so far.
func (e *Engine) collectPassive(
	ctx context.Context, event *entity.GiveawayEvent, community entity.Community,
) []Candidate {
	cfg := xcontext.Configs(ctx).Giveaway

	emote := community.GiveawayEmote
	if emote == "" {
		emote = cfg.DefaultReaction
	}

	candidates := e.collectReactions(ctx, event, emote, cfg.MaxReactionEntrants)
	if len(candidates) > 0 {
		return candidates
	}

	fallback := community.GiveawayFallbackEmote
	if fallback == "" {
		fallback = cfg.FallbackReaction
	}

	if fallback == "" || fallback == emote {
		return candidates
	}

	xcontext.Logger(ctx).Infof(
		"No reactions of %s on giveaway %s, retrying with %s", emote, event.ID, fallback)
	return e.collectReactions(ctx, event, fallback, cfg.MaxReactionEntrants)
}

func (e *Engine) collectReactions(
	ctx context.Context, event *entity.GiveawayEvent, emote string, bound int,
) []Candidate {
	seen := make(map[string]struct{})
	var candidates []Candidate

	after := ""
	for len(candidates) < bound {
		users, err := e.discordEndpoint.GetReactions(
			ctx, event.ChannelID, event.MessageID, emote, after, reactionPageLimit)
		if err != nil {
			// Keep what we already have rather than failing the pipeline.
			xcontext.Logger(ctx).Warnf("Cannot fetch reactions of giveaway %s: %v", event.ID, err)
			break
		}

		if len(users) == 0 {
			break
		}

		for _, user := range users {
			after = user.ID
			if user.IsBot {
				continue
			}

			if _, ok := seen[user.ID]; ok {
				continue
			}

			seen[user.ID] = struct{}{}
			candidates = append(candidates, Candidate{UserID: user.ID, Username: user.Username})
		}

		if len(users) < reactionPageLimit {
			break
		}
	}

	if len(candidates) > bound {
		candidates = candidates[:bound]
	}

	return candidates
}

// collectRegistered resolves every registration record to a live guild
// member. Departed members and bots are dropped; transient directory errors
// drop only that entrant.
func (e *Engine) collectRegistered(
	ctx context.Context, event *entity.GiveawayEvent, community entity.Community,
) ([]Candidate, error) {
	entrants, err := e.giveawayRepo.GetEntrantsByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var mutex sync.Mutex
	var candidates []Candidate

	eg, egCtx := errgroup.WithContext(ctx)
	for _, entrant := range entrants {
		userID := entrant.UserID
		eg.Go(func() error {
			member, err := e.discordEndpoint.GetMember(egCtx, community.DiscordGuildID, userID)
			if err != nil {
				if !errors.Is(err, discord.ErrUnknownMember) {
					xcontext.Logger(ctx).Warnf(
						"Cannot resolve entrant %s of giveaway %s: %v", userID, event.ID, err)
				}

				return nil
			}

			if member.User.IsBot {
				return nil
			}

			mutex.Lock()
			defer mutex.Unlock()
			candidates = append(candidates, Candidate{
				UserID:   member.User.ID,
				Username: member.User.Username,
				Roles:    member.Roles,
			})

			return nil
		})
	}

	// Per-entrant failures are swallowed above, so this cannot fail.
	eg.Wait()

	return candidates, nil
}
