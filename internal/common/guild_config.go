package common

import (
	"context"
	"time"

	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"github.com/guildify-lab/backend/pkg/xredis"
	"github.com/puzpuzpuz/xsync"
)

type guildConfigEntry struct {
	community entity.Community
	expiredAt time.Time
}

// GuildConfigCache is a read-mostly TTL cache of community settings keyed by
// community id, backed by two layers: a per-process xsync map and a shared
// redis object, so a fresh process reads warm settings without a DB round
// trip. Writers must call Invalidate; expired in-memory entries are pruned
// by the reconcile cron job.
type GuildConfigCache struct {
	communityRepo repository.CommunityRepository
	redisClient   xredis.Client
	entries       *xsync.MapOf[string, guildConfigEntry]
}

func NewGuildConfigCache(
	communityRepo repository.CommunityRepository, redisClient xredis.Client,
) *GuildConfigCache {
	return &GuildConfigCache{
		communityRepo: communityRepo,
		redisClient:   redisClient,
		entries:       xsync.NewMapOf[guildConfigEntry](),
	}
}

func (c *GuildConfigCache) Get(ctx context.Context, communityID string) (entity.Community, error) {
	if entry, ok := c.entries.Load(communityID); ok && entry.expiredAt.After(time.Now()) {
		return entry.community, nil
	}

	ttl := xcontext.Configs(ctx).Giveaway.GuildConfigTTL

	var warm entity.Community
	err := c.redisClient.GetObj(ctx, RedisKeyCommunitySettings(communityID), &warm)
	if err == nil {
		c.entries.Store(communityID, guildConfigEntry{
			community: warm,
			expiredAt: time.Now().Add(ttl),
		})

		return warm, nil
	}

	community, err := c.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return entity.Community{}, err
	}

	// Warm the shared layer for other processes; a failure only costs them
	// a DB read.
	err = c.redisClient.SetObj(ctx, RedisKeyCommunitySettings(communityID), *community, ttl)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot warm settings of community %s: %v", communityID, err)
	}

	c.entries.Store(communityID, guildConfigEntry{
		community: *community,
		expiredAt: time.Now().Add(ttl),
	})

	return *community, nil
}

// Invalidate drops both cache layers for a community after its settings
// change.
func (c *GuildConfigCache) Invalidate(ctx context.Context, communityID string) {
	c.entries.Delete(communityID)
	if err := c.redisClient.Del(ctx, RedisKeyCommunitySettings(communityID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate settings of community %s: %v", communityID, err)
	}
}

// Prune drops expired in-memory entries. Stale reads up to the TTL are
// acceptable, so this is housekeeping only.
func (c *GuildConfigCache) Prune() int {
	now := time.Now()
	pruned := 0
	c.entries.Range(func(key string, entry guildConfigEntry) bool {
		if entry.expiredAt.Before(now) {
			c.entries.Delete(key)
			pruned++
		}

		return true
	})

	return pruned
}
