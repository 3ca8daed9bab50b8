package testutil

import (
	"context"
	"time"

	"github.com/guildify-lab/backend/config"
	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/pkg/logger"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// The in-memory database exists per connection; keep the pool at one so
	// every query sees the same database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env:      "testing",
		LogLevel: logger.ERROR,
		Giveaway: config.GiveawayConfigs{
			RecoveryHorizon:     24 * time.Hour,
			ReconcileInterval:   time.Hour,
			MaxReactionEntrants: 1000,
			DefaultReaction:     "🎉",
			FallbackReaction:    "🎊",
			GuildConfigTTL:      time.Minute,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(cfg.LogLevel))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(db); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
