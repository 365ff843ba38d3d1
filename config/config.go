package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderHistory = "history"
	ProviderOpenAI  = "openai"

	UsageDriverNone   = "none"
	UsageDriverMemory = "memory"
	UsageDriverRedis  = "redis"
)

type Generation struct {
	Provider         string        `yaml:"provider" env:"GENERATION_PROVIDER" env-default:"history"`
	Endpoint         string        `yaml:"endpoint" env:"GENERATION_ENDPOINT" env-default:"https://cbd6-34-16-172-104.ngrok-free.app/"`
	ModelID          string        `yaml:"model_id" env:"GENERATION_MODEL_ID" env-default:"google/gemma-2-2b-jpn-it"`
	APIKey           string        `yaml:"api_key" env:"GENERATION_API_KEY"`
	MaxNewTokens     int           `yaml:"max_new_tokens" env:"GENERATION_MAX_NEW_TOKENS" env-default:"512"`
	DoSample         bool          `yaml:"do_sample" env:"GENERATION_DO_SAMPLE" env-default:"true"`
	Temperature      float64       `yaml:"temperature" env:"GENERATION_TEMPERATURE" env-default:"0.7"`
	TopP             float64       `yaml:"top_p" env:"GENERATION_TOP_P" env-default:"0.9"`
	RequestTimeout   time.Duration `yaml:"request_timeout" env:"GENERATION_REQUEST_TIMEOUT"`
	MaxContextTokens int           `yaml:"max_context_tokens" env:"GENERATION_MAX_CONTEXT_TOKENS"`
}

type Usage struct {
	Driver string `yaml:"driver" env:"USAGE_DRIVER" env-default:"none"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type Config struct {
	Generation Generation `yaml:"generation"`
	Usage      Usage      `yaml:"usage"`
	Redis      Redis      `yaml:"redis"`
	Log        Log        `yaml:"log"`
}

// LoadConfig reads the YAML file at cfgPath and overlays the environment on top of it.
// An empty cfgPath reads the environment only.
func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Generation.Provider {
	case ProviderHistory, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}
	if c.Generation.Endpoint == "" {
		return fmt.Errorf("generation endpoint is required")
	}
	switch c.Usage.Driver {
	case UsageDriverNone, UsageDriverMemory, UsageDriverRedis:
	default:
		return fmt.Errorf("unknown usage driver %q", c.Usage.Driver)
	}
	return nil
}
