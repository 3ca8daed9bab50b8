package entity

import (
	"time"

	"github.com/guildify-lab/backend/pkg/enum"
)

type GiveawayEntryMode string

var (
	// EntryModePassive collects entrants from the reaction on the anchor
	// message.
	EntryModePassive = enum.New(GiveawayEntryMode("passive"))

	// EntryModeRegistered collects entrants from explicit registration
	// records.
	EntryModeRegistered = enum.New(GiveawayEntryMode("registered"))
)

type GiveawayEvent struct {
	Base

	CommunityID string
	Community   Community `gorm:"foreignKey:CommunityID"`

	ChannelID string
	MessageID string

	Title string

	// EndTime is when the giveaway is due. Ended transitions false->true
	// exactly once and is never reset.
	EndTime time.Time
	Ended   bool

	WinnerCount int
	EntryMode   GiveawayEntryMode

	// RequiredRoles are role ids an entrant must hold all of. Empty means no
	// role requirement.
	RequiredRoles Array[string]

	// MinimumActivity is the minimum activity score an entrant must have.
	// Zero disables the activity filter.
	MinimumActivity int64
}

// GiveawayEntrant records an explicit registration. A user registers for an
// event at most once.
type GiveawayEntrant struct {
	Base

	GiveawayEventID string        `gorm:"uniqueIndex:idx_event_user"`
	GiveawayEvent   GiveawayEvent `gorm:"foreignKey:GiveawayEventID"`

	UserID string `gorm:"uniqueIndex:idx_event_user"`
}
