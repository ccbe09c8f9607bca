package main

import (
	"os"
	"strings"

	"github.com/InjectiveLabs/metrics"
	log "github.com/InjectiveLabs/suplog"
	"github.com/pkg/errors"
	"github.com/xlab/closer"
)

// startMetricsGathering initializes the statsd client. It is a one-shot run, so a failed init
// leaves reporting off instead of retrying.
func startMetricsGathering(opts *statsdOptions) {
	enabled, err := initMetrics(opts, *envName)
	if err != nil {
		log.WithError(err).Warningln("metrics init failed, reporting disabled")
		return
	}

	if enabled {
		closer.Bind(func() {
			metrics.Close()
		})
	}
}

// initMetrics reports whether a statsd client was installed. Until then every metrics call is a no-op.
func initMetrics(opts *statsdOptions, env string) (enabled bool, err error) {
	if toBool(*opts.disabled) {
		return false, nil
	}

	cfg := opts.statterConfig(env)
	if err := metrics.Init(cfg.Addr, cfg.Prefix, cfg); err != nil {
		return false, errors.Wrapf(err, "failed to init statsd client (agent %q)", cfg.Agent)
	}

	return true, nil
}

func checkStatsdPrefix(s string) string {
	if !strings.HasSuffix(s, ".") {
		return s + "."
	}
	return s
}

func hostname() string {
	name, _ := os.Hostname()
	return name
}
