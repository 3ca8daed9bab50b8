package main

import (
	"github.com/guildify-lab/backend/internal/domain/cron"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.loadRedisClient()
	s.loadEndpoint()
	s.loadRepos()
	s.loadEngine()
	s.loadDomains()

	// Bridge the restart before the periodic job takes over.
	s.engine.Recover(s.ctx)

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewReconcileGiveawaysCronJob(
			s.giveawayRepo,
			s.engine,
			s.guildConfig,
			xcontext.Configs(s.ctx).Giveaway.ReconcileInterval,
		),
	)

	return nil
}
