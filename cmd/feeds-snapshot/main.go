package main

import (
	"fmt"
	"os"

	log "github.com/InjectiveLabs/suplog"
	cli "github.com/jawher/mow.cli"
	"github.com/xlab/closer"

	"github.com/InjectiveLabs/feeds-snapshot/version"
)

var app = cli.App("feeds-snapshot", "Exports FTSO consumer price feeds snapshot into a CSV file.")

var (
	envName     *string
	appLogLevel *string

	rootExportOpts *exportOptions
	statsdOpts     *statsdOptions
)

func main() {
	readEnv()
	initGlobalOptions(
		&envName,
		&appLogLevel,
	)

	app.Before = func() {
		log.DefaultLogger.SetLevel(logLevel(*appLogLevel))
	}

	rootExportOpts = initExportOptions(app.Cmd)
	statsdOpts = initStatsdOptions(app.Cmd)
	app.Action = exportAction(rootExportOpts, nil)

	app.Command("export", "Fetches the feeds snapshot once and appends it to the CSV file (default).", exportCmd)
	app.Command("probe", "Fetches the feeds snapshot and prints it without writing to disk.", probeCmd)
	app.Command("version", "Print the version information and exit.", versionCmd)

	_ = app.Run(os.Args)

	// actions finish through closer, which calls os.Exit with the final code
	closer.Hold()
}

func versionCmd(c *cli.Cmd) {
	c.Action = func() {
		fmt.Println(version.Version())
		closer.Close()
	}
}
