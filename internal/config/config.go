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
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the historical policy dataset.
type DataConfig struct {
	HistoricalPath string `yaml:"historical_path" mapstructure:"historical_path"`
}

// AnalysisConfig holds Anthropic API settings for pattern analysis.
type AnalysisConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	Key            string  `yaml:"key" mapstructure:"key"`
	Model          string  `yaml:"model" mapstructure:"model"`
	MaxTokens      int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerMin int     `yaml:"requests_per_min" mapstructure:"requests_per_min"`
}

// Timeout returns the per-request analysis deadline.
func (c AnalysisConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheConfig configures the on-disk insight cache and fingerprint bucketing.
type CacheConfig struct {
	Dir            string `yaml:"dir" mapstructure:"dir"`
	TTLSecs        int    `yaml:"ttl_secs" mapstructure:"ttl_secs"`
	AgeBucketYears int    `yaml:"age_bucket_years" mapstructure:"age_bucket_years"`
	BMIBucketUnits int    `yaml:"bmi_bucket_units" mapstructure:"bmi_bucket_units"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.historical_path", "historical_customers.csv")
	v.SetDefault("analysis.enabled", true)
	v.SetDefault("analysis.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("analysis.max_tokens", 2000)
	v.SetDefault("analysis.temperature", 0.2)
	v.SetDefault("analysis.timeout_secs", 30)
	v.SetDefault("analysis.requests_per_min", 20)
	v.SetDefault("cache.dir", "ai_insights_cache")
	v.SetDefault("cache.ttl_secs", 3600)
	v.SetDefault("cache.age_bucket_years", 5)
	v.SetDefault("cache.bmi_bucket_units", 3)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("server.port", 8080)
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

// Validate checks settings that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.Analysis.Enabled && c.Analysis.Key == "" {
		return eris.New("config: analysis.key is required when analysis.enabled is true (set PRICING_ANALYSIS_KEY)")
	}
	if c.Cache.TTLSecs <= 0 {
		return eris.New("config: cache.ttl_secs must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	return nil
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
