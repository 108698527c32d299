// Package config contains the state keeper configuration definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/spacemeshos/go-statekeeper/accounttree"
	"github.com/spacemeshos/go-statekeeper/common/types"
	"github.com/spacemeshos/go-statekeeper/config/mapstructureutil"
	"github.com/spacemeshos/go-statekeeper/database"
	"github.com/spacemeshos/go-statekeeper/log"
	"github.com/spacemeshos/go-statekeeper/statekeeper"
)

const (
	defaultConfigFileName = "./config.toml"
	defaultDataDirName    = "statekeeper"
)

// Config defines the top level configuration of the state keeper.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Logging    log.Config         `mapstructure:"logging"`
	Keeper     statekeeper.Config `mapstructure:"keeper"`
	Tree       accounttree.Config `mapstructure:"tree"`
	Database   database.Config    `mapstructure:"database"`
	Genesis    GenesisConfig      `mapstructure:"genesis"`
}

// BaseConfig defines the process level options.
type BaseConfig struct {
	DataDir    string `mapstructure:"data-dir"`
	ConfigFile string `mapstructure:"config"`

	// ChainID is mixed into every signed transfer.
	ChainID string `mapstructure:"chain-id"`

	// ReplayOnly replays the block store, prints the root and exits.
	ReplayOnly bool `mapstructure:"replay-only"`

	CollectMetrics    bool          `mapstructure:"metrics"`
	MetricsPort       int           `mapstructure:"metrics-port"`
	MetricsPush       string        `mapstructure:"metrics-push"`
	MetricsPushPeriod time.Duration `mapstructure:"metrics-push-period"`
}

// GenesisConfig lists the accounts that exist before the first block.
type GenesisConfig struct {
	Accounts []types.GenesisAccount `mapstructure:"accounts"`
}

// BlockStorePath is where applied blocks are recorded.
func (cfg *Config) BlockStorePath() string {
	return filepath.Join(cfg.DataDir, "blocks")
}

// Validate checks values that can't be checked by decoding alone.
func (cfg *Config) Validate() error {
	if err := cfg.Tree.Validate(); err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	if cfg.Keeper.InboxSize < 0 || cfg.Keeper.OutboxSize < 0 {
		return errors.New("keeper: channel sizes can't be negative")
	}
	if cfg.CollectMetrics && (cfg.MetricsPort <= 0 || cfg.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port %d", cfg.MetricsPort)
	}
	if cfg.MetricsPush != "" && cfg.MetricsPushPeriod <= 0 {
		return errors.New("metrics push period must be positive")
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseConfig: defaultBaseConfig(),
		Logging:    log.DefaultConfig(),
		Keeper:     statekeeper.DefaultConfig(),
		Tree:       accounttree.DefaultConfig(),
		Database:   database.DefaultConfig(),
	}
}

func defaultBaseConfig() BaseConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return BaseConfig{
		DataDir:           filepath.Join(home, defaultDataDirName),
		ConfigFile:        defaultConfigFileName,
		MetricsPort:       1010,
		MetricsPushPeriod: time.Minute,
	}
}

// DecodeHook converts the textual forms used in config files and flags.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructureutil.BigIntDecodeFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// LoadConfig reads the config file at path from fs into vip.
// A missing file at the default location is not an error.
func LoadConfig(fs afero.Fs, path string, vip *viper.Viper) error {
	if path == "" {
		path = defaultConfigFileName
	}
	if _, err := fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && path == defaultConfigFileName {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	vip.SetFs(fs)
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load starts from base, overrides it with the file at path and validates the result.
func Load(fs afero.Fs, path string, base Config) (*Config, error) {
	vip := viper.New()
	if err := LoadConfig(fs, path, vip); err != nil {
		return nil, err
	}
	conf := base
	if err := vip.Unmarshal(&conf, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
