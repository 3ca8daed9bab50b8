package discord

import "context"

type IEndpoint interface {
	GetMember(ctx context.Context, guildID, userID string) (Member, error)
	GetReactions(ctx context.Context, channelID, messageID, emoji, after string, limit int) ([]User, error)
	SendMessage(ctx context.Context, channelID, content string) error
}
