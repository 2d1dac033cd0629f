package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the CLI's TOML configuration file.
type FileConfig struct {
	Client ClientConfig `toml:"client"`
	Watch  WatchConfig  `toml:"watch"`
}

// ClientConfig locates the background server and authenticates to it.
type ClientConfig struct {
	Server *string `toml:"server"`
	Token  *string `toml:"token"`
}

// WatchConfig maps watcher settings. Durations are in milliseconds.
type WatchConfig struct {
	Source        *string `toml:"source"`
	URL           *string `toml:"url"`
	IntervalMs    *int    `toml:"interval-ms"`
	RenderDelayMs *int    `toml:"render-delay-ms"`
	CooldownMs    *int    `toml:"cooldown-ms"`
}

// LoadFileConfig reads a TOML config from the given path. Missing file is not an error.
func LoadFileConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
