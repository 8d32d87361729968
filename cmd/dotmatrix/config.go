package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the frontend configuration, loaded from a TOML file. Every field
// has a usable default so running without a config file always works.
type Config struct {
	Scale   int    `toml:"scale"`
	Palette string `toml:"palette"`

	Keys KeyConfig `toml:"keys"`
}

// KeyConfig maps each button to an ebiten key name (case-insensitive).
type KeyConfig struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Start  string `toml:"start"`
	Select string `toml:"select"`
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Scale:   3,
		Palette: "green",
		Keys: KeyConfig{
			A:      "z",
			B:      "x",
			Start:  "enter",
			Select: "shift",
			Up:     "arrowup",
			Down:   "arrowdown",
			Left:   "arrowleft",
			Right:  "arrowright",
		},
	}
}

// LoadConfig reads the config at path, merged over the defaults. An empty
// path or a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
