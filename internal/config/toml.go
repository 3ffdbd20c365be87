// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Card CardConfig `toml:"card"`
	Data DataConfig `toml:"data"`
	Log  LogConfig  `toml:"log"`
}

// CardConfig maps chart card settings.
type CardConfig struct {
	Title       *string `toml:"title"`
	Description *string `toml:"description"`
	Type        *string `toml:"type"`
	Color       *string `toml:"color"`
	ChartHeight *int    `toml:"chart-height"`
	Period      *string `toml:"period"`
}

// DataConfig maps the usage data source settings.
type DataConfig struct {
	Org *string `toml:"org"`
	DB  *string `toml:"db"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
