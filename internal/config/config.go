package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Database DatabaseConfig `mapstructure:"database"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig controls session pacing and persistence layout.
type GameConfig struct {
	MaxRounds          int    `mapstructure:"max_rounds"`
	NarrationThreshold int    `mapstructure:"narration_threshold"`
	HistoryWindow      int    `mapstructure:"history_window"`
	SaveDir            string `mapstructure:"save_dir"`
}

// LLMConfig points at the completion endpoint the decision-makers use.
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig enables PostgreSQL persistence instead of save files.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// Load reads the config file and environment overrides. Environment
// variables use the CHRONICLE_ prefix with underscores, e.g.
// CHRONICLE_LLM_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CHRONICLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.max_rounds", 50)
	v.SetDefault("game.narration_threshold", 3)
	v.SetDefault("game.history_window", 5)
	v.SetDefault("game.save_dir", "saves")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	// Registered so environment overrides resolve even when the config
	// file omits the key.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 120*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
}

func (c *Config) validate() error {
	if c.Game.MaxRounds <= 0 {
		return fmt.Errorf("game.max_rounds must be positive, got %d", c.Game.MaxRounds)
	}
	if c.Game.NarrationThreshold <= 0 {
		return fmt.Errorf("game.narration_threshold must be positive, got %d", c.Game.NarrationThreshold)
	}
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("database.url is required when database.enabled is set")
	}
	return nil
}
