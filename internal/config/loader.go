package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the initialization file, applies defaults, clamps and
// validates, and makes sure the log directory exists.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("initialization file was not set")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("initialization file: %s does not exist", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	v.SetEnvPrefix("DEDUP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read initialization file %s: %w", path, err)
	}

	// Keys outside any section land in the ini DEFAULT section; lift them
	// to the top level so unmarshalling sees the flat key space.
	for _, key := range v.AllKeys() {
		if strings.HasPrefix(key, "default.") {
			v.Set(strings.TrimPrefix(key, "default."), v.Get(key))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal initialization file: %w", err)
	}

	if cfg.Verbosity < 0 {
		cfg.Verbosity = 0
	}
	if cfg.Verbosity > 3 {
		cfg.Verbosity = 3
	}
	if cfg.LogDirectory == "" {
		cfg.LogDirectory = "./"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.LogDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %s: %w",
			cfg.LogDirectory, err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("moduleIdentifier", "MOD_DEDUPLICATOR")
	v.SetDefault("logDirectory", filepath.Join(".", "logs"))
	v.SetDefault("maxFutureTime", 0)
	v.SetDefault("maxPastTime", 1200)
	v.SetDefault("heartbeatInterval", 15)
	v.SetDefault("logBadDataInterval", 3600)
	v.SetDefault("circularBufferDuration", 3600)
	v.SetDefault("verbosity", 2)
	v.SetDefault("metricsListen", "")
}
