package model

import "time"

type Giveaway struct {
	ID              string    `json:"id"`
	CommunityHandle string    `json:"community_handle"`
	ChannelID       string    `json:"channel_id"`
	MessageID       string    `json:"message_id"`
	Title           string    `json:"title"`
	EndTime         time.Time `json:"end_time"`
	Ended           bool      `json:"ended"`
	WinnerCount     int       `json:"winner_count"`
	EntryMode       string    `json:"entry_mode"`
	RequiredRoles   []string  `json:"required_roles,omitempty"`
	MinimumActivity int64     `json:"minimum_activity,omitempty"`
}

type CreateGiveawayRequest struct {
	CommunityHandle string    `json:"community_handle"`
	ChannelID       string    `json:"channel_id"`
	MessageID       string    `json:"message_id"`
	Title           string    `json:"title"`
	EndTime         time.Time `json:"end_time"`
	WinnerCount     int       `json:"winner_count"`
	EntryMode       string    `json:"entry_mode"`
	RequiredRoles   []string  `json:"required_roles"`
	MinimumActivity int64     `json:"minimum_activity"`
}

type CreateGiveawayResponse struct {
	ID string `json:"id"`
}

type GetGiveawayRequest struct {
	ID string `json:"id"`
}

type GetGiveawayResponse struct {
	Giveaway Giveaway `json:"giveaway"`
}

type JoinGiveawayRequest struct {
	ID string `json:"id"`
}

type JoinGiveawayResponse struct{}

type RescheduleGiveawayRequest struct {
	ID          string    `json:"id"`
	EndTime     time.Time `json:"end_time"`
	WinnerCount int       `json:"winner_count"`
}

type RescheduleGiveawayResponse struct{}

type EndGiveawayRequest struct {
	ID string `json:"id"`
}

type EndGiveawayResponse struct{}

type DeleteGiveawayRequest struct {
	ID string `json:"id"`
}

type DeleteGiveawayResponse struct{}

type UpdateGiveawaySettingsRequest struct {
	CommunityHandle       string `json:"community_handle"`
	GiveawayEmote         string `json:"giveaway_emote"`
	GiveawayFallbackEmote string `json:"giveaway_fallback_emote"`
	GiveawayPingRoleID    string `json:"giveaway_ping_role_id"`
	NotifyWinners         bool   `json:"notify_winners"`
}

type UpdateGiveawaySettingsResponse struct{}
