package main

import "github.com/urfave/cli/v2"

// NewApp creates an app with sane defaults.
func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Guildify"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the giveaway worker",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Recovers giveaway timers after a restart and runs the periodic reconcile job.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Flags:       []cli.Flag{},
			Category:    "Database",
			Description: `Creates or updates the tables this service owns.`,
		},
	}

	s.app = app
}
