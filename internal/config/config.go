package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`
	Mailbox  MailboxConfig  `yaml:"mailbox" mapstructure:"mailbox"`
	Filter   FilterConfig   `yaml:"filter" mapstructure:"filter"`
	Enrich   EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	Followup FollowupConfig `yaml:"followup" mapstructure:"followup"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProviderConfig names the active language-model backend. Credentials come
// from the environment (JOBPILOT_PROVIDER_API_KEY), never from pipeline logic.
type ProviderConfig struct {
	Backend           string `yaml:"backend" mapstructure:"backend"` // "anthropic" or "gemini"
	Model             string `yaml:"model" mapstructure:"model"`
	APIKey            string `yaml:"api_key" mapstructure:"api_key"`
	MaxTokens         int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// Timeout returns the per-call provider timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// MailboxConfig configures the directory-backed mailbox source.
type MailboxConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// FilterConfig screens candidates before storage. Filtering happens before
// any paid enrichment, so changing preferences affects future scans only.
type FilterConfig struct {
	PrimaryLocations   []string `yaml:"primary_locations" mapstructure:"primary_locations"`
	SecondaryLocations []string `yaml:"secondary_locations" mapstructure:"secondary_locations"`
	AllowRemote        bool     `yaml:"allow_remote" mapstructure:"allow_remote"`
	ExcludedKeywords   []string `yaml:"excluded_keywords" mapstructure:"excluded_keywords"`
	MinExperienceYears int      `yaml:"min_experience_years" mapstructure:"min_experience_years"`
	MaxExperienceYears int      `yaml:"max_experience_years" mapstructure:"max_experience_years"`
}

// EnrichConfig configures the enrichment pipeline.
type EnrichConfig struct {
	LogoTimeoutSecs int    `yaml:"logo_timeout_secs" mapstructure:"logo_timeout_secs"`
	LogoBaseURL     string `yaml:"logo_base_url" mapstructure:"logo_base_url"`
}

// FollowupConfig configures follow-up scanning and ghost detection.
type FollowupConfig struct {
	GhostThresholdDays int `yaml:"ghost_threshold_days" mapstructure:"ghost_threshold_days"`
	LookbackDays       int `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// BatchConfig bounds batch concurrency.
type BatchConfig struct {
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs"`
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
	v.SetEnvPrefix("JOBPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "jobpilot.db")
	v.SetDefault("provider.backend", "anthropic")
	v.SetDefault("provider.model", "claude-sonnet-4-5-20250929")
	// Empty default so JOBPILOT_PROVIDER_API_KEY binds through AutomaticEnv.
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.max_tokens", 2048)
	v.SetDefault("provider.timeout_secs", 60)
	v.SetDefault("provider.requests_per_minute", 30)
	v.SetDefault("mailbox.dir", "inbox")
	v.SetDefault("filter.allow_remote", true)
	v.SetDefault("filter.min_experience_years", 0)
	v.SetDefault("filter.max_experience_years", 15)
	v.SetDefault("enrich.logo_timeout_secs", 5)
	v.SetDefault("enrich.logo_base_url", "https://logo.clearbit.com")
	v.SetDefault("followup.ghost_threshold_days", 14)
	v.SetDefault("followup.lookback_days", 90)
	v.SetDefault("batch.max_concurrent_jobs", 4)
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
