// Package config loads configuration from the environment and an
// optional YAML file. Every key is overridable with a CONCLAVE_
// environment variable, e.g. CONCLAVE_GEMINI_API_KEY.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Provider is the completion provider: gemini, openai, or deepseek.
	Provider string `mapstructure:"provider"`
	// Model overrides the provider's default model.
	Model string `mapstructure:"model"`

	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	DeepseekAPIKey string `mapstructure:"deepseek_api_key"`

	// SamplesPerRound is the number of completions per voting round.
	SamplesPerRound int `mapstructure:"samples_per_round"`
	// MaxRounds caps the retry rounds per decision.
	MaxRounds int `mapstructure:"max_rounds"`

	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RequestAttempts uint          `mapstructure:"request_attempts"`

	// EngineBinary is the UCI engine used by the engine player and for
	// move-quality metrics; empty means auto-detect.
	EngineBinary string `mapstructure:"engine_binary"`
	EngineDepth  int    `mapstructure:"engine_depth"`
	// EngineMoveTime, when non-zero, limits engine searches by time
	// instead of depth.
	EngineMoveTime time.Duration `mapstructure:"engine_movetime"`

	// MaxMoves is the half-move cutoff for a game; 0 means no cutoff.
	MaxMoves  int  `mapstructure:"max_moves"`
	ShowBoard bool `mapstructure:"show_board"`
	Metrics   bool `mapstructure:"metrics"`
	Debug     bool `mapstructure:"debug"`
}

// Load reads configuration, merging defaults, the optional file at
// path, and CONCLAVE_* environment variables (highest precedence).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONCLAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("deepseek_api_key", "")
	v.SetDefault("samples_per_round", 1)
	v.SetDefault("max_rounds", 4)
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("request_attempts", 3)
	v.SetDefault("engine_binary", "")
	v.SetDefault("engine_depth", 10)
	v.SetDefault("engine_movetime", time.Duration(0))
	v.SetDefault("max_moves", 0)
	v.SetDefault("show_board", false)
	v.SetDefault("metrics", false)
	v.SetDefault("debug", false)
}

func (c *Config) validate() error {
	switch c.Provider {
	case "gemini", "openai", "deepseek":
	default:
		return fmt.Errorf("unsupported provider %q (want gemini, openai, or deepseek)", c.Provider)
	}
	if c.SamplesPerRound < 1 {
		return fmt.Errorf("samples_per_round must be >= 1, got %d", c.SamplesPerRound)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be >= 1, got %d", c.MaxRounds)
	}
	if c.RequestAttempts < 1 {
		return fmt.Errorf("request_attempts must be >= 1, got %d", c.RequestAttempts)
	}
	if c.EngineDepth < 1 {
		return fmt.Errorf("engine_depth must be >= 1, got %d", c.EngineDepth)
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "gemini":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "deepseek":
		return c.DeepseekAPIKey
	}
	return ""
}
