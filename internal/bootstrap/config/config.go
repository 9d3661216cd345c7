package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Agent    AgentConfig    `mapstructure:"agent"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	Secret          string `mapstructure:"secret"`
	AccessTokenTTLM int    `mapstructure:"access_token_ttl_minutes"`
}

func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLM) * time.Minute
}

type AgentConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	PromptsFile    string  `mapstructure:"prompts_file"`
}

func (c AgentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

const devSecret = "change-this-secret-in-production"

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	if cfg.Auth.Secret == devSecret {
		logging.Warn(logCtx, "auth.secret is the development default")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("agent_model", cfg.Agent.Model),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if cfg.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if cfg.Auth.AccessTokenTTLM <= 0 {
		return errors.New("auth.access_token_ttl_minutes must be positive")
	}
	if cfg.Agent.APIKey == "" {
		return errors.New("agent.api_key is required")
	}
	if cfg.Agent.Model == "" {
		return errors.New("agent.model is required")
	}
	if cfg.Agent.TimeoutSeconds <= 0 {
		return errors.New("agent.timeout_seconds must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "reviewd")
	v.SetDefault("app.env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allow_origins", []string{"*"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/reviewd.sqlite")
	v.SetDefault("auth.secret", devSecret)
	v.SetDefault("auth.access_token_ttl_minutes", 30)
	// Keys without a meaningful default still need one registered, otherwise
	// viper never surfaces their env overrides to Unmarshal.
	v.SetDefault("agent.api_key", "")
	v.SetDefault("agent.prompts_file", "")
	v.SetDefault("agent.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("agent.model", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("agent.temperature", 0.7)
	v.SetDefault("agent.max_tokens", 1000)
	v.SetDefault("agent.timeout_seconds", 30)
}
