package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/spacemeshos/go-statekeeper/config"
	"github.com/spacemeshos/go-statekeeper/config/presets"
)

// AddFlags registers the command line flags. Parsed values are written into
// conf, which also provides the defaults shown in help.
func AddFlags(flagSet *pflag.FlagSet, conf *config.Config) {
	flagSet.StringP("preset", "p", "",
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))

	/** ======================== BaseConfig Flags ========================== **/
	flagSet.StringVarP(&conf.ConfigFile, "config", "c",
		conf.ConfigFile, "load configuration from file")
	flagSet.StringVarP(&conf.DataDir, "data-dir", "d",
		conf.DataDir, "directory for the block store")
	flagSet.StringVar(&conf.ChainID, "chain-id",
		conf.ChainID, "chain id mixed into transfer signatures")
	flagSet.BoolVar(&conf.ReplayOnly, "replay-only",
		conf.ReplayOnly, "replay stored blocks, print the root and exit")
	flagSet.BoolVar(&conf.CollectMetrics, "metrics",
		conf.CollectMetrics, "serve prometheus metrics")
	flagSet.IntVar(&conf.MetricsPort, "metrics-port",
		conf.MetricsPort, "metrics server port")
	flagSet.StringVar(&conf.MetricsPush, "metrics-push",
		conf.MetricsPush, "push metrics to url")
	flagSet.DurationVar(&conf.MetricsPushPeriod, "metrics-push-period",
		conf.MetricsPushPeriod, "push period")

	/** ======================== Logging Flags ========================== **/
	flagSet.StringVar(&conf.Logging.Level, "log-level",
		conf.Logging.Level, "log level (debug, info, warn, error)")
	flagSet.StringVar(&conf.Logging.Encoder, "log-encoder",
		conf.Logging.Encoder, "log encoder (console, json)")

	/** ======================== Keeper Flags ========================== **/
	flagSet.IntVar(&conf.Keeper.InboxSize, "inbox-size",
		conf.Keeper.InboxSize, "number of requests that can wait for the control loop")
	flagSet.IntVar(&conf.Keeper.OutboxSize, "outbox-size",
		conf.Keeper.OutboxSize, "buffer of the commitment and proof channels")
}
