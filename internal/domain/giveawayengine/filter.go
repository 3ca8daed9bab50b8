package giveawayengine

import (
	"context"

	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/pkg/xcontext"
)

// filterEligible narrows candidates to those holding every required role and
// meeting the activity threshold. The cheap role check runs before the
// per-candidate activity lookup, and activity scores are only fetched when a
// threshold is configured. A candidate whose external lookups fail is
// dropped, not the whole pass.
func (e *Engine) filterEligible(
	ctx context.Context, event *entity.GiveawayEvent, candidates []Candidate,
) []Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if !e.passRoles(ctx, event, candidate) {
			continue
		}

		if !e.passActivity(ctx, event, candidate) {
			continue
		}

		eligible = append(eligible, candidate)
	}

	return eligible
}

func (e *Engine) passRoles(ctx context.Context, event *entity.GiveawayEvent, candidate Candidate) bool {
	if len(event.RequiredRoles) == 0 {
		return true
	}

	roles := candidate.Roles
	if roles == nil {
		community, err := e.guildConfig.Get(ctx, event.CommunityID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot load community of giveaway %s: %v", event.ID, err)
			return false
		}

		member, err := e.discordEndpoint.GetMember(ctx, community.DiscordGuildID, candidate.UserID)
		if err != nil {
			xcontext.Logger(ctx).Debugf(
				"Cannot resolve roles of candidate %s in giveaway %s: %v", candidate.UserID, event.ID, err)
			return false
		}

		roles = member.Roles
	}

	held := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		held[role] = struct{}{}
	}

	// AND semantics: every required role must be held.
	for _, required := range event.RequiredRoles {
		if _, ok := held[required]; !ok {
			return false
		}
	}

	return true
}

func (e *Engine) passActivity(ctx context.Context, event *entity.GiveawayEvent, candidate Candidate) bool {
	if event.MinimumActivity <= 0 {
		return true
	}

	score, err := e.activityReader.Score(ctx, event.CommunityID, candidate.UserID)
	if err != nil {
		xcontext.Logger(ctx).Debugf(
			"Cannot read activity of candidate %s in giveaway %s: %v", candidate.UserID, event.ID, err)
		return false
	}

	return score >= event.MinimumActivity
}
