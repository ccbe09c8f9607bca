package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/InjectiveLabs/feeds-snapshot/internal/service/ftso"
	"github.com/InjectiveLabs/feeds-snapshot/internal/service/snapshot"
)

const defaultRPCURL = "https://coston2-api.flare.network/ext/C/rpc"

// fileConfig is the optional TOML config, e.g.
//
//	rpcUrl = "https://coston2-api.flare.network/ext/C/rpc"
//	contract = "0x431ac67aCC345d42F27e2119aC92B4f6dAd69Ed4"
//	outDir = "/var/lib/feeds"
//	strictCsv = false
type fileConfig struct {
	RPCURL     string `toml:"rpcUrl"`
	RPCTimeout string `toml:"rpcTimeout"`
	Contract   string `toml:"contract"`
	ABIPath    string `toml:"abiPath"`
	OutDir     string `toml:"outDir"`
	StrictCSV  bool   `toml:"strictCsv"`
	Lock       bool   `toml:"lock"`
}

type exportConfig struct {
	RPCURL     string
	RPCTimeout time.Duration
	Contract   string
	ABIPath    string
	OutPath    string
	StrictCSV  bool
	Lock       bool
}

func parseFileConfig(body []byte) (*fileConfig, error) {
	var cfg fileConfig
	if err := toml.Unmarshal(body, &cfg); err != nil {
		err = errors.Wrap(err, "failed to unmarshal TOML config")
		return nil, err
	}

	return &cfg, nil
}

// resolveExportConfig merges CLI options over the config file and fills in defaults.
func resolveExportConfig(opts *exportOptions) (*exportConfig, error) {
	fileCfg := &fileConfig{}
	if len(*opts.configPath) > 0 {
		body, err := os.ReadFile(*opts.configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", *opts.configPath)
		}

		if fileCfg, err = parseFileConfig(body); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", *opts.configPath)
		}
	}

	cfg := &exportConfig{
		RPCURL:    firstNonEmpty(*opts.rpcURL, fileCfg.RPCURL, defaultRPCURL),
		Contract:  firstNonEmpty(*opts.contract, fileCfg.Contract, ftso.DefaultConsumerAddress),
		ABIPath:   firstNonEmpty(*opts.abiPath, fileCfg.ABIPath),
		StrictCSV: *opts.strictCSV || fileCfg.StrictCSV,
		Lock:      *opts.useLock || fileCfg.Lock,
	}

	if timeout := firstNonEmpty(*opts.rpcTimeout, fileCfg.RPCTimeout); len(timeout) > 0 {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse rpc timeout: %s (expected format: 30s)", timeout)
			return nil, err
		}

		cfg.RPCTimeout = d
	}

	outDir := firstNonEmpty(*opts.outDir, fileCfg.OutDir)
	if len(outDir) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "failed to locate executable directory")
		}

		outDir = filepath.Dir(exe)
	}

	cfg.OutPath = filepath.Join(outDir, snapshot.DefaultFileName)

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}

	return ""
}
