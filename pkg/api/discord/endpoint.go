package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/guildify-lab/backend/config"
	"github.com/guildify-lab/backend/pkg/api"
	"github.com/puzpuzpuz/xsync"
)

const apiURL = "https://discord.com/api/v10"
const userAgent = "DiscordBot (https://guildify.app, 1.0)"

const (
	getReactionsResource = "get_reactions"
	sendMessageResource  = "send_message"
)

type Endpoint struct {
	BotToken string
	BotID    string

	apiGenerator      api.Generator
	rateLimitResource *xsync.MapOf[string, *xsync.MapOf[string, time.Time]]
}

func New(cfg config.DiscordConfigs) *Endpoint {
	return &Endpoint{
		BotToken:          cfg.BotToken,
		BotID:             cfg.BotID,
		apiGenerator:      api.NewGenerator(),
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}
}

// GetMember resolves a guild member together with its role ids. It returns
// ErrUnknownMember if the user has left the guild.
func (e *Endpoint) GetMember(ctx context.Context, guildID, userID string) (Member, error) {
	resp, err := e.apiGenerator.New(apiURL, "/guilds/%s/members/%s", guildID, userID).
		Header("User-Agent", userAgent).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return Member{}, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Member{}, errors.New("invalid response")
	}

	// If response has the field of code, an error is returned.
	if _, err := body.GetInt("code"); err == nil {
		return Member{}, ErrUnknownMember
	}

	user, err := body.GetJSON("user")
	if err != nil {
		return Member{}, err
	}

	id, err := user.GetString("id")
	if err != nil {
		return Member{}, err
	}

	username, err := user.GetString("username")
	if err != nil {
		return Member{}, err
	}

	// The bot field is omitted for regular users.
	isBot, _ := user.GetBool("bot")

	roles, err := body.GetStringArray("roles")
	if err != nil {
		return Member{}, err
	}

	return Member{
		User:  User{ID: id, Username: username, IsBot: isBot},
		Roles: roles,
	}, nil
}

// GetReactions returns one page of users who reacted to the message with the
// given emoji, starting after the given user id.
func (e *Endpoint) GetReactions(
	ctx context.Context, channelID, messageID, emoji, after string, limit int,
) ([]User, error) {
	if err := e.checkLimitingResource(getReactionsResource, channelID); err != nil {
		return nil, err
	}

	query := api.Parameter{"limit": strconv.Itoa(limit)}
	if after != "" {
		query["after"] = after
	}

	resp, err := e.apiGenerator.New(apiURL, "/channels/%s/messages/%s/reactions/%s", channelID, messageID, emoji).
		Header("User-Agent", userAgent).
		Query(query).
		GET(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return nil, err
	}

	if err := e.checkTooManyRequest(resp, getReactionsResource, channelID); err != nil {
		return nil, err
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errors.New("invalid response")
	}

	var users []User
	for _, obj := range array {
		id, err := obj.GetString("id")
		if err != nil {
			return nil, err
		}

		username, err := obj.GetString("username")
		if err != nil {
			return nil, err
		}

		isBot, _ := obj.GetBool("bot")
		users = append(users, User{ID: id, Username: username, IsBot: isBot})
	}

	return users, nil
}

func (e *Endpoint) SendMessage(ctx context.Context, channelID, content string) error {
	if err := e.checkLimitingResource(sendMessageResource, channelID); err != nil {
		return err
	}

	resp, err := e.apiGenerator.New(apiURL, "/channels/%s/messages", channelID).
		Header("User-Agent", userAgent).
		Body(api.JSON{"content": content}).
		POST(ctx, api.OAuth2("Bot", e.BotToken))
	if err != nil {
		return err
	}

	if err := e.checkTooManyRequest(resp, sendMessageResource, channelID); err != nil {
		return err
	}

	return nil
}

func (e *Endpoint) checkLimitingResource(resource, identifier string) error {
	if limit, ok := e.rateLimitResource.Load(resource); ok {
		if resetAt, ok := limit.Load(identifier); ok {
			if resetAt.After(time.Now()) {
				return wrapRateLimit(resetAt.Unix())
			}

			// If the rate limit is reset, delete the limit for this resource.
			limit.Delete(identifier)
		}
	}

	return nil
}

func (e *Endpoint) checkTooManyRequest(resp *api.Response, resource, identifier string) error {
	if resp.Code == http.StatusTooManyRequests {
		resetAt, err := strconv.Atoi(resp.Header.Get("X-Ratelimit-Reset"))
		if err != nil {
			return err
		}

		resourceLimiter, _ := e.rateLimitResource.LoadOrStore(resource, xsync.NewMapOf[time.Time]())
		resourceLimiter.Store(identifier, time.Unix(int64(resetAt), 0))
		return wrapRateLimit(int64(resetAt))
	}

	return nil
}
