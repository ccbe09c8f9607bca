package main

import (
	"context"
	"io"
	"os"

	cli "github.com/jawher/mow.cli"
	"github.com/pkg/errors"
	"github.com/xlab/closer"

	"github.com/InjectiveLabs/feeds-snapshot/internal/service/snapshot"
)

// probeCmd action fetches the snapshot and prints it as CSV, leaving the file untouched.
//
// $ feeds-snapshot probe [--symbol BTC/USD]
func probeCmd(cmd *cli.Cmd) {
	opts := initExportOptions(cmd)
	symbol := cmd.String(cli.StringOpt{
		Name: "s symbol",
		Desc: "Print only the feed with this symbol (e.g. BTC/USD).",
	})

	cmd.Action = func() {
		startMetricsGathering(statsdOpts)

		cfg, err := resolveExportConfig(opts.inherit(rootExportOpts))
		if err != nil {
			exitWithError(err, "failed to load export config")
			return
		}

		ctx, cancelFn := callContext(cfg)
		defer cancelFn()

		if err := runProbe(ctx, cfg, *symbol, os.Stdout); err != nil {
			exitWithError(err, "failed to probe feeds snapshot")
			return
		}

		closer.Close()
	}
}

// runProbe prints the current snapshot, or the single row matching symbol, as CSV with a header.
func runProbe(ctx context.Context, cfg *exportConfig, symbol string, out io.Writer) error {
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}

	rows, err := exporter.Fetch(ctx)
	if err != nil {
		return err
	}

	if len(symbol) > 0 {
		row, ok := snapshot.FindRow(rows, symbol)
		if !ok {
			return errors.Errorf("%s not found in consumer feeds", symbol)
		}

		rows = []snapshot.FeedRow{row}
	}

	body, err := snapshot.NewEncoder(cfg.StrictCSV).Encode(rows, true)
	if err != nil {
		return err
	}

	_, err = out.Write(body)
	return err
}
