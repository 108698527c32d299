// Package cmd is the base package for the state keeper executables.
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/spacemeshos/go-statekeeper/config"
	"github.com/spacemeshos/go-statekeeper/config/presets"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string

	// Branch is the git branch used to build the App. Designed to be overwritten by make.
	Branch string

	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// flagSetters copy a flag value parsed into src over dst.
var flagSetters = map[string]func(dst, src *config.Config){
	"config":              func(dst, src *config.Config) { dst.ConfigFile = src.ConfigFile },
	"data-dir":            func(dst, src *config.Config) { dst.DataDir = src.DataDir },
	"chain-id":            func(dst, src *config.Config) { dst.ChainID = src.ChainID },
	"replay-only":         func(dst, src *config.Config) { dst.ReplayOnly = src.ReplayOnly },
	"metrics":             func(dst, src *config.Config) { dst.CollectMetrics = src.CollectMetrics },
	"metrics-port":        func(dst, src *config.Config) { dst.MetricsPort = src.MetricsPort },
	"metrics-push":        func(dst, src *config.Config) { dst.MetricsPush = src.MetricsPush },
	"metrics-push-period": func(dst, src *config.Config) { dst.MetricsPushPeriod = src.MetricsPushPeriod },
	"log-level":           func(dst, src *config.Config) { dst.Logging.Level = src.Logging.Level },
	"log-encoder":         func(dst, src *config.Config) { dst.Logging.Encoder = src.Logging.Encoder },
	"inbox-size":          func(dst, src *config.Config) { dst.Keeper.InboxSize = src.Keeper.InboxSize },
	"outbox-size":         func(dst, src *config.Config) { dst.Keeper.OutboxSize = src.Keeper.OutboxSize },
}

// EnsureCLIFlags copies every flag that was set on the command line from
// flagConf over conf, so that flags take precedence over the config file.
func EnsureCLIFlags(flagSet *pflag.FlagSet, conf, flagConf *config.Config) {
	flagSet.Visit(func(f *pflag.Flag) {
		if set, ok := flagSetters[f.Name]; ok {
			set(conf, flagConf)
		}
	})
}

// LoadConfig builds the configuration from the preset, the config file and the
// flags, in increasing order of precedence. flagConf must be the config that
// was passed to AddFlags.
func LoadConfig(fs afero.Fs, flagSet *pflag.FlagSet, flagConf *config.Config) (*config.Config, error) {
	base := config.DefaultConfig()
	if name, err := flagSet.GetString("preset"); err == nil && name != "" {
		preset, err := presets.Get(name)
		if err != nil {
			return nil, err
		}
		base = preset
	}
	path := ""
	if flagSet.Changed("config") {
		path = flagConf.ConfigFile
	}
	conf, err := config.Load(fs, path, base)
	if err != nil {
		return nil, fmt.Errorf("loading config from file: %w", err)
	}
	EnsureCLIFlags(flagSet, conf, flagConf)
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("mapping cli flags to config: %w", err)
	}
	return conf, nil
}
