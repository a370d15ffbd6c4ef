package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// WindowConfig holds the playfield size in pixels.
type WindowConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// RoundConfig holds new-round settings. A zero seed picks a random one.
type RoundConfig struct {
	Tanks int   `mapstructure:"tanks"`
	Seed  int64 `mapstructure:"seed"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

// SimConfig holds the simulation speed multiplier (0 starts paused).
type SimConfig struct {
	Speed float64 `mapstructure:"speed"`
}

// Config is the full game configuration.
type Config struct {
	Window WindowConfig `mapstructure:"window"`
	Round  RoundConfig  `mapstructure:"round"`
	Log    LogConfig    `mapstructure:"log"`
	Audio  AudioConfig  `mapstructure:"audio"`
	Sim    SimConfig    `mapstructure:"sim"`
}

const (
	configName = "scorched"
	envPrefix  = "SCORCHED"

	minTanks = 2
	maxTanks = 8
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 640)

	v.SetDefault("round.tanks", 2)
	v.SetDefault("round.seed", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.6)

	v.SetDefault("sim.speed", 1.0)
}

// Load reads configuration and applies defaults. An explicit path must exist;
// with an empty path a scorched.{yaml,json,toml} in the working directory or
// $HOME/.config/scorched is used when present. SCORCHED_* environment
// variables (e.g. SCORCHED_ROUND_TANKS) override both.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/scorched")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings a round cannot start with.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Round.Tanks < minTanks || c.Round.Tanks > maxTanks {
		return fmt.Errorf("round.tanks must be in %d..%d, got %d", minTanks, maxTanks, c.Round.Tanks)
	}
	if c.Sim.Speed < 0 {
		return fmt.Errorf("sim.speed must not be negative, got %v", c.Sim.Speed)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be in 0..1, got %v", c.Audio.Volume)
	}
	return nil
}
