package xcontext

import (
	"context"
	"net/http"

	"github.com/guildify-lab/backend/config"
	"github.com/guildify-lab/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey    struct{}
	loggerKey     struct{}
	dbKey         struct{}
	txKey         struct{}
	httpClientKey struct{}
	userIDKey     struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if one has been opened with
// WithDBTransaction, otherwise the root connection.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && !tx.done {
		return tx.db
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db
}

type txState struct {
	db   *gorm.DB
	done bool
}

func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txState{db: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && !tx.done {
		tx.db.Commit()
		tx.done = true
	}

	return ctx
}

// WithRollbackDBTransaction does nothing if the transaction has already been
// committed, so it is safe to defer unconditionally.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && !tx.done {
		tx.db.Rollback()
		tx.done = true
	}

	return ctx
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

func HTTPClient(ctx context.Context) *http.Client {
	client, ok := ctx.Value(httpClientKey{}).(*http.Client)
	if !ok {
		return http.DefaultClient
	}

	return client
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}
