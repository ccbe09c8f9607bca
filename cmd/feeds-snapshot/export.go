package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/InjectiveLabs/suplog"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/ethclient"
	cli "github.com/jawher/mow.cli"
	"github.com/pkg/errors"
	"github.com/xlab/closer"

	"github.com/InjectiveLabs/feeds-snapshot/internal/service/ftso"
	"github.com/InjectiveLabs/feeds-snapshot/internal/service/snapshot"
)

// exportCmd action fetches the feeds snapshot once and writes it to disk.
//
// $ feeds-snapshot export [--out DIR]
func exportCmd(cmd *cli.Cmd) {
	opts := initExportOptions(cmd)
	cmd.Action = exportAction(opts, rootExportOpts)
}

func exportAction(opts, parent *exportOptions) func() {
	return func() {
		startMetricsGathering(statsdOpts)

		cfg, err := resolveExportConfig(opts.inherit(parent))
		if err != nil {
			exitWithError(err, "failed to load export config")
			return
		}

		ctx, cancelFn := callContext(cfg)
		defer cancelFn()

		if err := runExport(ctx, cfg, os.Stdout); err != nil {
			exitWithError(err, "failed to export feeds snapshot")
			return
		}

		closer.Close()
	}
}

// runExport performs one export and prints the outcome line to out.
func runExport(ctx context.Context, cfg *exportConfig, out io.Writer) error {
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := exporter.Run(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, res.Message())
	return err
}

func newExporter(ctx context.Context, cfg *exportConfig) (*snapshot.Exporter, error) {
	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := snapshot.NewStore(cfg.OutPath, snapshot.NewEncoder(cfg.StrictCSV), cfg.Lock)

	return snapshot.NewExporter(fetcher, store), nil
}

func newFetcher(ctx context.Context, cfg *exportConfig) (snapshot.FeedsFetcher, error) {
	var consumerABI abi.ABI
	if len(cfg.ABIPath) > 0 {
		parsed, err := ftso.LoadArtifactABI(cfg.ABIPath)
		if err != nil {
			return nil, snapshot.Classify(snapshot.KindContract, err)
		}

		consumerABI = parsed
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		err = errors.Wrapf(err, "failed to dial RPC endpoint %s", cfg.RPCURL)
		return nil, snapshot.Classify(snapshot.KindNetwork, err)
	}

	closer.Bind(func() {
		client.Close()
	})

	fetcher, err := ftso.NewConsumer(client, cfg.Contract, consumerABI)
	if err != nil {
		return nil, snapshot.Classify(snapshot.KindContract, err)
	}

	return fetcher, nil
}

func callContext(cfg *exportConfig) (context.Context, context.CancelFunc) {
	if cfg.RPCTimeout > 0 {
		return context.WithTimeout(context.Background(), cfg.RPCTimeout)
	}

	return context.WithCancel(context.Background())
}

func exitWithError(err error, msg string) {
	logger := log.WithError(err)
	if kind := snapshot.KindOf(err); len(kind) > 0 {
		logger = logger.WithField("kind", kind.String())
	}

	logger.Errorln(msg)
	closer.Exit(1)
}
