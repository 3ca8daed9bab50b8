package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/guildify-lab/backend/config"
	"github.com/guildify-lab/backend/internal/common"
	"github.com/guildify-lab/backend/internal/domain"
	"github.com/guildify-lab/backend/internal/domain/giveawayengine"
	"github.com/guildify-lab/backend/internal/domain/statistic"
	"github.com/guildify-lab/backend/internal/repository"
	"github.com/guildify-lab/backend/pkg/api/discord"
	"github.com/guildify-lab/backend/pkg/logger"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"github.com/guildify-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	giveawayRepo  repository.GiveawayRepository
	communityRepo repository.CommunityRepository

	guildConfig     *common.GuildConfigCache
	discordEndpoint discord.IEndpoint
	redisClient     xredis.Client
	activityReader  statistic.ActivityReader

	engine         *giveawayengine.Engine
	giveawayDomain domain.GiveawayDomain
}

func (s *srv) loadConfig() {
	cfg := config.Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: getEnvInt("LOG_LEVEL", logger.INFO),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "guildify"),
			Password: getEnv("MYSQL_PASSWORD", "guildify"),
			Database: getEnv("MYSQL_DATABASE", "guildify"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Discord: config.DiscordConfigs{
			BotToken: getEnv("DISCORD_BOT_TOKEN", ""),
			BotID:    getEnv("DISCORD_BOT_ID", ""),
		},
		Giveaway: config.GiveawayConfigs{
			RecoveryHorizon:     getEnvDuration("GIVEAWAY_RECOVERY_HORIZON", 24*time.Hour),
			ReconcileInterval:   getEnvDuration("GIVEAWAY_RECONCILE_INTERVAL", time.Hour),
			MaxReactionEntrants: getEnvInt("GIVEAWAY_MAX_REACTION_ENTRANTS", 1000),
			DefaultReaction:     getEnv("GIVEAWAY_DEFAULT_REACTION", "🎉"),
			FallbackReaction:    getEnv("GIVEAWAY_FALLBACK_REACTION", "🎊"),
			GuildConfigTTL:      getEnvDuration("GUILD_CONFIG_TTL", time.Minute),
		},
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
}

func (s *srv) loadLogger() {
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(xcontext.Configs(s.ctx).LogLevel))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.Open(cfg.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadEndpoint() {
	s.discordEndpoint = discord.New(xcontext.Configs(s.ctx).Discord)
}

func (s *srv) loadRepos() {
	s.giveawayRepo = repository.NewGiveawayRepository()
	s.communityRepo = repository.NewCommunityRepository()
	s.guildConfig = common.NewGuildConfigCache(s.communityRepo, s.redisClient)
	s.activityReader = statistic.NewActivityReader(s.redisClient)
}

func (s *srv) loadEngine() {
	announcer := domain.NewDiscordAnnouncer(s.discordEndpoint, s.guildConfig)
	s.engine = giveawayengine.NewEngine(
		s.ctx,
		s.giveawayRepo,
		s.discordEndpoint,
		s.activityReader,
		s.guildConfig,
		announcer,
	)
}

func (s *srv) loadDomains() {
	s.giveawayDomain = domain.NewGiveawayDomain(
		s.giveawayRepo, s.communityRepo, s.guildConfig, s.engine)
}

func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return def
}

func getEnvInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}

	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}

	return def
}
