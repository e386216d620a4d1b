package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Analytics   AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AnalyticsConfig defines the tunables of the forecasting and insight engine.
type AnalyticsConfig struct {
	// MinHistoryDays is the minimum number of distinct days a series must
	// cover before forecasting is attempted.
	MinHistoryDays int `mapstructure:"min_history_days"`
	// MaxHorizonDays caps how far ahead a forecast can be requested.
	MaxHorizonDays int `mapstructure:"max_horizon_days"`
	// LookbackDays is how much history the data-fetch layer loads.
	LookbackDays int `mapstructure:"lookback_days"`
	// BacktestFraction is the trailing share of the series held out for
	// candidate scoring.
	BacktestFraction float64 `mapstructure:"backtest_fraction"`
	// MinHoldoutPoints is the minimum held-out window size.
	MinHoldoutPoints int `mapstructure:"min_holdout_points"`
	// ConfidenceZ is the bound multiplier for the target interval.
	ConfidenceZ float64 `mapstructure:"confidence_z"`
	// FullConfidenceDays is the data volume at which confidence is no
	// longer discounted for scarcity.
	FullConfidenceDays int `mapstructure:"full_confidence_days"`
	// DefaultSensitivity is the anomaly sensitivity used when a caller
	// does not pick one.
	DefaultSensitivity string `mapstructure:"default_sensitivity"`
	// MaxInsights caps how many ranked insights a single call returns.
	MaxInsights int `mapstructure:"max_insights"`
	// CacheTTL is how long computed forecasts stay valid in the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Load reads the configuration from the config file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "modaflow")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_conns", 10)
	viper.SetDefault("database.min_conns", 2)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("analytics.min_history_days", 7)
	viper.SetDefault("analytics.max_horizon_days", 365)
	viper.SetDefault("analytics.lookback_days", 180)
	viper.SetDefault("analytics.backtest_fraction", 0.25)
	viper.SetDefault("analytics.min_holdout_points", 3)
	viper.SetDefault("analytics.confidence_z", 1.96)
	viper.SetDefault("analytics.full_confidence_days", 60)
	viper.SetDefault("analytics.default_sensitivity", "medium")
	viper.SetDefault("analytics.max_insights", 10)
	viper.SetDefault("analytics.cache_ttl", 30*time.Second)
}
