package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "venturelink",
		Usage: "Pitch marketplace API with upload screening and NDA gated assets",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			inspectCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
