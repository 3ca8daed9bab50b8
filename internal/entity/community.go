package entity

type Community struct {
	Base

	Handle string `gorm:"unique"`
	Name   string

	// Discord guild this community is bound to.
	DiscordGuildID string

	// Giveaway display settings.
	GiveawayEmote         string
	GiveawayFallbackEmote string
	GiveawayPingRoleID    string
	NotifyWinners         bool
}
