package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel int

	Database DatabaseConfigs
	Redis    RedisConfigs
	Discord  DiscordConfigs
	Giveaway GiveawayConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string
}

type DiscordConfigs struct {
	BotToken string
	BotID    string
}

type GiveawayConfigs struct {
	// RecoveryHorizon bounds how far into the future the startup sweep arms
	// timers. Events due later are picked up by the reconcile job.
	RecoveryHorizon   time.Duration
	ReconcileInterval time.Duration

	// MaxReactionEntrants caps how many passive entrants are collected
	// from the anchor message's reactions. Reactions are fetched in pages
	// of 100 until this cap is reached.
	MaxReactionEntrants int

	DefaultReaction  string
	FallbackReaction string

	GuildConfigTTL time.Duration
}
