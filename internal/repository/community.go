package repository

import (
	"context"

	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/pkg/xcontext"
)

type CommunityRepository interface {
	Create(ctx context.Context, community *entity.Community) error
	GetByID(ctx context.Context, id string) (*entity.Community, error)
	GetByHandle(ctx context.Context, handle string) (*entity.Community, error)
	UpdateSettingsByID(ctx context.Context, id string, settings entity.Community) error
}

type communityRepository struct{}

func NewCommunityRepository() *communityRepository {
	return &communityRepository{}
}

func (r *communityRepository) Create(ctx context.Context, community *entity.Community) error {
	return xcontext.DB(ctx).Create(community).Error
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*entity.Community, error) {
	var result entity.Community
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *communityRepository) GetByHandle(ctx context.Context, handle string) (*entity.Community, error) {
	var result entity.Community
	if err := xcontext.DB(ctx).Take(&result, "handle=?", handle).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *communityRepository) UpdateSettingsByID(
	ctx context.Context, id string, settings entity.Community,
) error {
	// Select the settings columns so a false toggle is written too.
	return xcontext.DB(ctx).Model(&entity.Community{}).
		Where("id=?", id).
		Select("giveaway_emote", "giveaway_fallback_emote", "giveaway_ping_role_id", "notify_winners").
		Updates(settings).Error
}
