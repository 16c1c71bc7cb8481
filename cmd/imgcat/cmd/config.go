package cmd

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the defaults read from the config files. Command line flags
// override every field.
type Config struct {
	Encoder string  `koanf:"encoder"` // "kitty", "iterm", "sixel", "ascii" or "" for auto
	Spx     string  `koanf:"spx"`     // pixel fallback, WxH[xforce]
	Sc      string  `koanf:"sc"`      // cell fallback, WxH[xforce]
	Scale   float64 `koanf:"scale"`
	Inline  bool    `koanf:"inline"`
	Width   string  `koanf:"width"`
	Height  string  `koanf:"height"`
	Center  bool    `koanf:"center"`
	Shm     bool    `koanf:"shm"`
}

// LoadConfig reads the given TOML files in order; later files win. Missing
// files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{Scale: 1}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	return cfg, nil
}

func configPaths() []string {
	paths := []string{}

	// 1. ~/.config/rasteroid/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rasteroid", "config.toml"))
	}

	// 2. ./rasteroid.toml (pwd, highest priority)
	paths = append(paths, "rasteroid.toml")

	return paths
}
