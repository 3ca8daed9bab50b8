package repository

import (
	"context"
	"time"

	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GiveawayRepository interface {
	// Event
	CreateEvent(ctx context.Context, event *entity.GiveawayEvent) error
	GetEventByID(ctx context.Context, eventID string) (*entity.GiveawayEvent, error)
	GetActiveEvents(ctx context.Context, before time.Time) ([]entity.GiveawayEvent, error)
	GetActiveEventIDs(ctx context.Context) ([]string, error)
	UpdateEvent(ctx context.Context, event *entity.GiveawayEvent) error
	MarkEnded(ctx context.Context, eventID string) error
	DeleteEvent(ctx context.Context, eventID string) error

	// Entrant
	CreateEntrant(ctx context.Context, entrant *entity.GiveawayEntrant) error
	GetEntrant(ctx context.Context, eventID, userID string) (*entity.GiveawayEntrant, error)
	GetEntrantsByEventID(ctx context.Context, eventID string) ([]entity.GiveawayEntrant, error)
	DeleteEntrantsByEventID(ctx context.Context, eventID string) error
}

type giveawayRepository struct{}

func NewGiveawayRepository() *giveawayRepository {
	return &giveawayRepository{}
}

func (r *giveawayRepository) CreateEvent(ctx context.Context, event *entity.GiveawayEvent) error {
	return xcontext.DB(ctx).Create(event).Error
}

func (r *giveawayRepository) GetEventByID(ctx context.Context, eventID string) (*entity.GiveawayEvent, error) {
	var result entity.GiveawayEvent
	if err := xcontext.DB(ctx).Take(&result, "id=?", eventID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *giveawayRepository) GetActiveEvents(
	ctx context.Context, before time.Time,
) ([]entity.GiveawayEvent, error) {
	var result []entity.GiveawayEvent
	err := xcontext.DB(ctx).
		Where("ended=? AND end_time<=?", false, before).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giveawayRepository) GetActiveEventIDs(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.GiveawayEvent{}).
		Where("ended=?", false).
		Pluck("id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giveawayRepository) UpdateEvent(ctx context.Context, event *entity.GiveawayEvent) error {
	return xcontext.DB(ctx).Save(event).Error
}

// MarkEnded claims the terminal transition. It returns
// gorm.ErrRecordNotFound if the event does not exist or has already ended,
// so concurrent completions of the same event resolve to a single winner.
func (r *giveawayRepository) MarkEnded(ctx context.Context, eventID string) error {
	tx := xcontext.DB(ctx).Model(&entity.GiveawayEvent{}).
		Where("id=? AND ended=?", eventID, false).
		Update("ended", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *giveawayRepository) DeleteEvent(ctx context.Context, eventID string) error {
	return xcontext.DB(ctx).Delete(&entity.GiveawayEvent{}, "id=?", eventID).Error
}

func (r *giveawayRepository) CreateEntrant(ctx context.Context, entrant *entity.GiveawayEntrant) error {
	return xcontext.DB(ctx).Create(entrant).Error
}

func (r *giveawayRepository) GetEntrant(
	ctx context.Context, eventID, userID string,
) (*entity.GiveawayEntrant, error) {
	var result entity.GiveawayEntrant
	err := xcontext.DB(ctx).
		Take(&result, "giveaway_event_id=? AND user_id=?", eventID, userID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *giveawayRepository) GetEntrantsByEventID(
	ctx context.Context, eventID string,
) ([]entity.GiveawayEntrant, error) {
	var result []entity.GiveawayEntrant
	if err := xcontext.DB(ctx).Find(&result, "giveaway_event_id=?", eventID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giveawayRepository) DeleteEntrantsByEventID(ctx context.Context, eventID string) error {
	return xcontext.DB(ctx).Delete(&entity.GiveawayEntrant{}, "giveaway_event_id=?", eventID).Error
}
