package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stock-logistic/quoting-cli/internal/export"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Session      SessionConfig      `yaml:"session" mapstructure:"session"`
	Anthropic    AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	OpenRoute    OpenRouteConfig    `yaml:"openroute" mapstructure:"openroute"`
	TollGuru     TollGuruConfig     `yaml:"tollguru" mapstructure:"tollguru"`
	Restrictions RestrictionsConfig `yaml:"restrictions" mapstructure:"restrictions"`
	Geo          GeoConfig          `yaml:"geo" mapstructure:"geo"`
	Notion       NotionConfig       `yaml:"notion" mapstructure:"notion"`
	Salesforce   SalesforceConfig   `yaml:"salesforce" mapstructure:"salesforce"`
	Export       ExportConfig       `yaml:"export" mapstructure:"export"`
	Monitoring   MonitoringConfig   `yaml:"monitoring" mapstructure:"monitoring"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the session and quote store backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	Path        string            `yaml:"path" mapstructure:"path"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP chat server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// SessionConfig configures conversation session retention.
type SessionConfig struct {
	TTLHours            int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	EvictionIntervalMin int `yaml:"eviction_interval_min" mapstructure:"eviction_interval_min"`
}

// AnthropicConfig holds the assistant API settings. An empty key disables
// the assistant and the handler falls back to template replies.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// OpenRouteConfig holds routing API settings. An empty key disables live
// route resolution and pricing falls back to the distance table.
type OpenRouteConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// TollGuruConfig holds toll API settings. An empty key disables live toll
// lookups and pricing falls back to the per-km estimate.
type TollGuruConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RestrictionsConfig holds the road restriction calendar settings.
type RestrictionsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Key     string `yaml:"key" mapstructure:"key"`
}

// GeoConfig points at the country boundary shapefile used to resolve
// transited countries from route geometry.
type GeoConfig struct {
	ShapefilePath string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
	CodeField     string `yaml:"code_field" mapstructure:"code_field"`
}

// NotionConfig holds the quote log database settings.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	QuoteDB string `yaml:"quote_db" mapstructure:"quote_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings for the quote sync.
type SalesforceConfig struct {
	ClientID   string `yaml:"client_id" mapstructure:"client_id"`
	Username   string `yaml:"username" mapstructure:"username"`
	KeyPath    string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL   string `yaml:"login_url" mapstructure:"login_url"`
	ObjectName string `yaml:"object_name" mapstructure:"object_name"`
}

// ExportConfig configures quote book exports and the partner FTP drop.
type ExportConfig struct {
	Dir string           `yaml:"dir" mapstructure:"dir"`
	FTP export.FTPConfig `yaml:"ftp" mapstructure:"ftp"`
}

// MonitoringConfig configures the background ops health checker. An empty
// webhook URL disables alert delivery; collection still runs for /status.
type MonitoringConfig struct {
	WebhookURL            string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs     int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours   int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	ErrorRateThreshold    float64 `yaml:"error_rate_threshold" mapstructure:"error_rate_threshold"`
	RestrictedRateMax     float64 `yaml:"restricted_rate_max" mapstructure:"restricted_rate_max"`
	AbandonedSessionLimit int     `yaml:"abandoned_session_limit" mapstructure:"abandoned_session_limit"`
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
	v.SetEnvPrefix("QUOTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "quoting.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.eviction_interval_min", 15)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.4)
	v.SetDefault("openroute.base_url", "https://api.openrouteservice.org")
	v.SetDefault("openroute.rate_limit", 2)
	v.SetDefault("tollguru.base_url", "https://apis.tollguru.com")
	v.SetDefault("geo.code_field", "ISO_A2")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.object_name", "Freight_Quote__c")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.ftp.timeout", "30s")
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.error_rate_threshold", 0.25)
	v.SetDefault("monitoring.restricted_rate_max", 0.5)
	v.SetDefault("monitoring.abandoned_session_limit", 10)

	// Keys without a meaningful default still need one registered so
	// AutomaticEnv surfaces their QUOTING_* overrides through Unmarshal.
	for _, key := range []string{
		"store.database_url",
		"anthropic.key",
		"openroute.key",
		"tollguru.key",
		"restrictions.base_url",
		"restrictions.key",
		"geo.shapefile_path",
		"notion.token",
		"notion.quote_db",
		"salesforce.client_id",
		"salesforce.username",
		"salesforce.key_path",
		"export.ftp.host",
		"export.ftp.user",
		"export.ftp.password",
		"export.ftp.dir",
		"monitoring.webhook_url",
	} {
		v.SetDefault(key, "")
	}

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
