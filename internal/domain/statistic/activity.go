package statistic

import (
	"context"

	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/pkg/xredis"
)

// ActivityReader reads per-user activity scores for a community. Scores are
// accumulated by the message gateway into a redis sorted set; the giveaway
// engine only reads them, and only when an event configures a minimum
// activity threshold.
type ActivityReader interface {
	Score(ctx context.Context, communityID, userID string) (int64, error)
}

type activityReader struct {
	redisClient xredis.Client
}

func NewActivityReader(redisClient xredis.Client) *activityReader {
	return &activityReader{redisClient: redisClient}
}

func (r *activityReader) Score(ctx context.Context, communityID, userID string) (int64, error) {
	score, err := r.redisClient.ZScore(ctx, common.RedisKeyActivity(communityID), userID)
	if err != nil {
		return 0, err
	}

	return int64(score), nil
}
