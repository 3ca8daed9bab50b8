package main

import (
	"github.com/guildify-lab/backend/internal/entity"
	"github.com/guildify-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	db := s.newDatabase()
	if err := entity.MigrateTable(db); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migration done")
	return nil
}
