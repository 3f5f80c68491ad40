// Package config holds the settings shared by the game and storyctl. Values
// come from STORYLINE_* environment variables and may be overridden by
// command-line flags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// StoryDir overrides the embedded story and script prefabs when set.
	StoryDir string `env:"STORYLINE_STORY_DIR" envDefault:"prefabs"`
	// Stories lists the prefabs spawned by the game.
	Stories []string `env:"STORYLINE_STORIES" envSeparator:"," envDefault:"bird_intro,lamp"`
	SavePath string   `env:"STORYLINE_SAVE_PATH"`

	LogLevel string `env:"STORYLINE_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"STORYLINE_LOG_JSON"`

	TPS          int  `env:"STORYLINE_TPS" envDefault:"60"`
	MaxVoices    int  `env:"STORYLINE_MAX_VOICES" envDefault:"8"`
	MessageTicks int  `env:"STORYLINE_MESSAGE_TICKS" envDefault:"180"`
	Watch        bool `env:"STORYLINE_WATCH"`
	Debug        bool `env:"STORYLINE_DEBUG"`

	MetricsAddr string `env:"STORYLINE_METRICS_ADDR"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.TPS <= 0 {
		return fmt.Errorf("config: tps must be positive, got %d", c.TPS)
	}
	if c.MaxVoices <= 0 {
		return fmt.Errorf("config: max voices must be positive, got %d", c.MaxVoices)
	}
	if c.MessageTicks < 0 {
		return fmt.Errorf("config: message ticks must not be negative, got %d", c.MessageTicks)
	}
	return nil
}
