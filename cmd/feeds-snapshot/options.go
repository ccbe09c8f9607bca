package main

import (
	"time"

	"github.com/InjectiveLabs/metrics"
	cli "github.com/jawher/mow.cli"

	"github.com/InjectiveLabs/feeds-snapshot/version"
)

// initGlobalOptions defines some global CLI options, that are useful for most parts of the app.
// Before adding option to there, consider moving it into the actual Cmd.
func initGlobalOptions(
	envName **string,
	appLogLevel **string,
) {
	*envName = app.String(cli.StringOpt{
		Name:   "e env",
		Desc:   "The environment name this app runs in. Used for metrics and error reporting.",
		EnvVar: "FEEDS_ENV",
		Value:  "local",
	})

	*appLogLevel = app.String(cli.StringOpt{
		Name:   "l log-level",
		Desc:   "Available levels: error, warn, info, debug.",
		EnvVar: "FEEDS_LOG_LEVEL",
		Value:  "info",
	})
}

// exportOptions are accepted both before and after the export/probe subcommand names.
type exportOptions struct {
	configPath *string

	// Chain params
	rpcURL     *string
	rpcTimeout *string
	contract   *string
	abiPath    *string

	// Output params
	outDir    *string
	strictCSV *bool
	useLock   *bool
}

func initExportOptions(cmd *cli.Cmd) *exportOptions {
	opts := &exportOptions{}

	opts.configPath = cmd.String(cli.StringOpt{
		Name:   "c config",
		Desc:   "Path to optional TOML config file. Non-empty options take precedence over it.",
		EnvVar: "FEEDS_CONFIG",
	})

	initChainOptions(
		cmd,
		&opts.rpcURL,
		&opts.rpcTimeout,
		&opts.contract,
		&opts.abiPath,
	)

	initOutputOptions(
		cmd,
		&opts.outDir,
		&opts.strictCSV,
		&opts.useLock,
	)

	return opts
}

// inherit fills options left empty on a subcommand with the values given before its name.
func (o *exportOptions) inherit(parent *exportOptions) *exportOptions {
	if parent == nil {
		return o
	}

	strictCSV := *o.strictCSV || *parent.strictCSV
	useLock := *o.useLock || *parent.useLock

	return &exportOptions{
		configPath: inheritString(o.configPath, parent.configPath),
		rpcURL:     inheritString(o.rpcURL, parent.rpcURL),
		rpcTimeout: inheritString(o.rpcTimeout, parent.rpcTimeout),
		contract:   inheritString(o.contract, parent.contract),
		abiPath:    inheritString(o.abiPath, parent.abiPath),
		outDir:     inheritString(o.outDir, parent.outDir),
		strictCSV:  &strictCSV,
		useLock:    &useLock,
	}
}

func inheritString(own, parent *string) *string {
	v := firstNonEmpty(*own, *parent)
	return &v
}

func initChainOptions(
	cmd *cli.Cmd,
	rpcURL **string,
	rpcTimeout **string,
	contract **string,
	abiPath **string,
) {
	*rpcURL = cmd.String(cli.StringOpt{
		Name:   "rpc-url",
		Desc:   "EVM JSON-RPC endpoint of the network the consumer contract lives on.",
		EnvVar: "FEEDS_RPC_URL",
	})

	*rpcTimeout = cmd.String(cli.StringOpt{
		Name:   "rpc-timeout",
		Desc:   "Timeout for the contract call (e.g. 30s). Empty means the transport default.",
		EnvVar: "FEEDS_RPC_TIMEOUT",
	})

	*contract = cmd.String(cli.StringOpt{
		Name:   "contract",
		Desc:   "Address of the FTSOConsumer contract.",
		EnvVar: "FEEDS_CONTRACT",
	})

	*abiPath = cmd.String(cli.StringOpt{
		Name:   "abi-path",
		Desc:   "Path to Hardhat artifact JSON with the consumer ABI. Embedded ABI is used if empty.",
		EnvVar: "FEEDS_ABI_PATH",
	})
}

func initOutputOptions(
	cmd *cli.Cmd,
	outDir **string,
	strictCSV **bool,
	useLock **bool,
) {
	*outDir = cmd.String(cli.StringOpt{
		Name:   "o out",
		Desc:   "Directory of the feeds-snapshot.csv file. Defaults to the executable directory.",
		EnvVar: "FEEDS_OUT_DIR",
	})

	*strictCSV = cmd.Bool(cli.BoolOpt{
		Name:   "strict-csv",
		Desc:   "Quote CSV fields per RFC 4180. Default output writes fields verbatim.",
		EnvVar: "FEEDS_STRICT_CSV",
		Value:  false,
	})

	*useLock = cmd.Bool(cli.BoolOpt{
		Name:   "lock",
		Desc:   "Hold an advisory file lock while writing the snapshot.",
		EnvVar: "FEEDS_LOCK",
		Value:  false,
	})
}

type statsdOptions struct {
	prefix   *string
	addr     *string
	agent    *string
	stuckDur *string
	mocking  *string
	disabled *string
}

// initStatsdOptions registers StatsD options on the root command, they apply to every subcommand.
func initStatsdOptions(cmd *cli.Cmd) *statsdOptions {
	return &statsdOptions{
		prefix: cmd.String(cli.StringOpt{
			Name:   "statsd-prefix",
			Desc:   "Metrics prefix, a trailing dot is added when missing.",
			EnvVar: "FEEDS_STATSD_PREFIX",
			Value:  "feeds_snapshot",
		}),
		addr: cmd.String(cli.StringOpt{
			Name:   "statsd-addr",
			Desc:   "UDP address of the StatsD agent.",
			EnvVar: "FEEDS_STATSD_ADDR",
			Value:  "localhost:8125",
		}),
		agent: cmd.String(cli.StringOpt{
			Name:   "statsd-agent",
			Desc:   "StatsD agent flavour: telegraf or datadog.",
			EnvVar: "FEEDS_STATSD_AGENT",
			Value:  metrics.TelegrafAgent,
		}),
		stuckDur: cmd.String(cli.StringOpt{
			Name:   "statsd-stuck-func",
			Desc:   "Duration after which a reported call counts as stuck.",
			EnvVar: "FEEDS_STATSD_STUCK_DUR",
			Value:  "5m",
		}),
		mocking: cmd.String(cli.StringOpt{
			Name:   "statsd-mocking",
			Desc:   "Log metric values instead of sending them. Always on in the local env.",
			EnvVar: "FEEDS_STATSD_MOCKING",
			Value:  "false",
		}),
		disabled: cmd.String(cli.StringOpt{
			Name:   "statsd-disabled",
			Desc:   "Skip metrics setup entirely, the default for a one-shot export.",
			EnvVar: "FEEDS_STATSD_DISABLED",
			Value:  "true",
		}),
	}
}

func (o *statsdOptions) statterConfig(env string) *metrics.StatterConfig {
	return &metrics.StatterConfig{
		Addr:                 *o.addr,
		Prefix:               checkStatsdPrefix(*o.prefix),
		Agent:                *o.agent,
		EnvName:              env,
		HostName:             hostname(),
		Version:              version.AppVersion,
		StuckFunctionTimeout: duration(*o.stuckDur, 5*time.Minute),
		MockingEnabled:       toBool(*o.mocking) || env == "local",
	}
}
