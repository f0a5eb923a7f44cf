// Package config loads CLI configuration from file, environment, and
// flags via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved CLI configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Deploy  DeployConfig  `mapstructure:"deploy"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	OrgID   string `mapstructure:"org_id"`
	Token   string `mapstructure:"token"`
}

// StorageConfig holds local snapshot storage settings.
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// DeployConfig holds deployment log settings.
type DeployConfig struct {
	LogFile string `mapstructure:"log_file"`
}

// WatchConfig holds watch loop settings.
type WatchConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig holds display settings.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// Load reads configuration from the config file (if any), environment
// variables with the STATESET_ prefix, and defaults.
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("STATESET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if viper.ConfigFileUsed() == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".stateset"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults and env cover everything.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.ExpandPaths(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "https://api.stateset.com")
	viper.SetDefault("storage.base_dir", "~/.stateset/snapshots")
	viper.SetDefault("deploy.log_file", "~/.stateset/deployments.json")
	viper.SetDefault("watch.interval_seconds", 30)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("output.format", "table")
	viper.SetDefault("output.no_color", false)
}

// ExpandPaths resolves ~ in configured paths to the user home directory.
func (c *Config) ExpandPaths() error {
	var err error
	if c.Storage.BaseDir, err = expandPath(c.Storage.BaseDir); err != nil {
		return err
	}
	if c.Deploy.LogFile, err = expandPath(c.Deploy.LogFile); err != nil {
		return err
	}
	return nil
}

func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
