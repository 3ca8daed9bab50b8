package testutil

import (
	"context"

	"github.com/guildify-lab/backend/pkg/api/discord"
)

type MockDiscordEndpoint struct {
	GetMemberFunc    func(ctx context.Context, guildID, userID string) (discord.Member, error)
	GetReactionsFunc func(ctx context.Context, channelID, messageID, emoji, after string, limit int) ([]discord.User, error)
	SendMessageFunc  func(ctx context.Context, channelID, content string) error
}

func (m *MockDiscordEndpoint) GetMember(
	ctx context.Context, guildID, userID string,
) (discord.Member, error) {
	if m.GetMemberFunc != nil {
		return m.GetMemberFunc(ctx, guildID, userID)
	}

	return discord.Member{User: discord.User{ID: userID}}, nil
}

func (m *MockDiscordEndpoint) GetReactions(
	ctx context.Context, channelID, messageID, emoji, after string, limit int,
) ([]discord.User, error) {
	if m.GetReactionsFunc != nil {
		return m.GetReactionsFunc(ctx, channelID, messageID, emoji, after, limit)
	}

	return nil, nil
}

func (m *MockDiscordEndpoint) SendMessage(ctx context.Context, channelID, content string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, channelID, content)
	}

	return nil
}
