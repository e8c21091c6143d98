package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Analyze   AnalyzeConfig   `yaml:"analyze" mapstructure:"analyze"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Harvest   HarvestConfig   `yaml:"harvest" mapstructure:"harvest"`
	Blocklist BlocklistConfig `yaml:"blocklist" mapstructure:"blocklist"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SearchConfig holds Google Custom Search API settings.
type SearchConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	CX          string `yaml:"cx" mapstructure:"cx"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Locale      string `yaml:"locale" mapstructure:"locale"`
	PageDelayMs int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnalyzeConfig selects and tunes the AI page analyzer.
type AnalyzeConfig struct {
	Provider         string `yaml:"provider" mapstructure:"provider"` // gemini, anthropic, none
	MaxTextChars     int    `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	BreakerThreshold int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSecs        int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTextChars       int  `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	MaxBodyBytes       int  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// RenderConfig points at the remote browser rendering service (optional).
type RenderConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Secret      string `yaml:"secret" mapstructure:"secret"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EnrichConfig configures the enrichment scheduler.
type EnrichConfig struct {
	MaxConcurrent   int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	SubpageLimit    int `yaml:"subpage_limit" mapstructure:"subpage_limit"`
	TaskTimeoutSecs int `yaml:"task_timeout_secs" mapstructure:"task_timeout_secs"`
}

// HarvestConfig configures the search harvester.
type HarvestConfig struct {
	MaxConcurrent  int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	PerQueryTarget int `yaml:"per_query_target" mapstructure:"per_query_target"`
}

// BlocklistConfig extends the built-in domain exclusion list.
type BlocklistConfig struct {
	File  string   `yaml:"file" mapstructure:"file"`
	Extra []string `yaml:"extra" mapstructure:"extra"`
}

// StoreConfig configures the run-status backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // none, sqlite, postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a real default still need registering, or Unmarshal
	// never looks them up in the environment.
	for _, key := range []string{
		"search.key",
		"search.cx",
		"gemini.key",
		"gemini.base_url",
		"anthropic.key",
		"render.url",
		"render.secret",
		"store.database_url",
		"blocklist.file",
	} {
		v.SetDefault(key, "")
	}

	// Defaults
	v.SetDefault("search.base_url", "https://www.googleapis.com")
	v.SetDefault("search.locale", "pl")
	v.SetDefault("search.page_delay_ms", 500)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("analyze.provider", "gemini")
	v.SetDefault("analyze.max_text_chars", 25000)
	v.SetDefault("analyze.breaker_threshold", 5)
	v.SetDefault("analyze.breaker_reset_secs", 60)
	v.SetDefault("fetch.timeout_secs", 25)
	v.SetDefault("fetch.max_text_chars", 25000)
	v.SetDefault("fetch.max_body_bytes", 2*1024*1024)
	v.SetDefault("fetch.insecure_skip_verify", true)
	v.SetDefault("render.timeout_secs", 70)
	v.SetDefault("enrich.max_concurrent", 10)
	v.SetDefault("enrich.subpage_limit", 2)
	v.SetDefault("enrich.task_timeout_secs", 90)
	v.SetDefault("harvest.max_concurrent", 8)
	v.SetDefault("harvest.per_query_target", 20)
	v.SetDefault("store.driver", "none")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings needed by mode are present and sane.
// Modes: "enrich", "harvest", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "enrich":
	case "harvest":
		errs = append(errs, c.validateSearch()...)
	case "serve":
		errs = append(errs, c.validateSearch()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Analyze.Provider {
	case "gemini":
		if c.Gemini.Key == "" {
			errs = append(errs, "gemini.key is required for analyze.provider=gemini")
		}
	case "anthropic":
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required for analyze.provider=anthropic")
		}
	case "none", "":
	default:
		errs = append(errs, fmt.Sprintf("analyze.provider %q is not one of gemini, anthropic, none", c.Analyze.Provider))
	}

	if c.Render.URL != "" && c.Render.Secret == "" {
		errs = append(errs, "render.secret is required when render.url is set")
	}

	switch c.Store.Driver {
	case "none", "":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not one of none, sqlite, postgres", c.Store.Driver))
	}

	if c.Enrich.MaxConcurrent < 1 || c.Enrich.MaxConcurrent > 50 {
		errs = append(errs, "enrich.max_concurrent must be between 1 and 50")
	}
	if c.Enrich.SubpageLimit < 0 {
		errs = append(errs, "enrich.subpage_limit must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateSearch() []string {
	var errs []string
	if c.Search.Key == "" {
		errs = append(errs, "search.key is required")
	}
	if c.Search.CX == "" {
		errs = append(errs, "search.cx is required")
	}
	if c.Harvest.MaxConcurrent < 1 || c.Harvest.MaxConcurrent > 50 {
		errs = append(errs, "harvest.max_concurrent must be between 1 and 50")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
