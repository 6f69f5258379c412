package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Anthropic AnthropicConfig
	Runner    RunnerConfig
}

type AppConfig struct {
	Name        string `validate:"required"`
	Environment string `validate:"oneof=development staging production"`
	Debug       bool
}

type ServerConfig struct {
	Host         string
	Port         int `validate:"min=1,max=65535"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            int    `validate:"min=1,max=65535"`
	User            string `validate:"required"`
	Password        string
	Name            string `validate:"required"`
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Password string
	DB       int
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AnthropicConfig struct {
	APIKey    string
	BaseURL   string `validate:"required,url"`
	MaxTokens int    `validate:"min=1"`
	Timeout   time.Duration
}

type RunnerConfig struct {
	TickInterval     time.Duration `validate:"min=1s"`
	BatchSize        int           `validate:"min=1"`
	LeaderKey        string        `validate:"required"`
	LeaderTTL        time.Duration `validate:"min=5s"`
	StuckThreshold   time.Duration `validate:"min=1m"`
	RetentionDays    int           `validate:"min=1"`
	QueueConcurrency int           `validate:"min=1"`
	ShutdownTimeout  time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config

	// App
	cfg.App.Name = viper.GetString("app.name")
	cfg.App.Environment = viper.GetString("app.environment")
	cfg.App.Debug = viper.GetBool("app.debug")

	// Server
	cfg.Server.Host = viper.GetString("server.host")
	cfg.Server.Port = viper.GetInt("server.port")
	cfg.Server.ReadTimeout = viper.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = viper.GetDuration("server.write_timeout")

	// Database
	cfg.Database.Host = viper.GetString("database.host")
	cfg.Database.Port = viper.GetInt("database.port")
	cfg.Database.User = viper.GetString("database.user")
	cfg.Database.Password = viper.GetString("database.password")
	cfg.Database.Name = viper.GetString("database.name")
	cfg.Database.SSLMode = viper.GetString("database.sslmode")
	cfg.Database.MaxOpenConns = viper.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = viper.GetInt("database.max_idle_conns")
	cfg.Database.ConnMaxLifetime = viper.GetDuration("database.conn_max_lifetime")

	// Redis
	cfg.Redis.Host = viper.GetString("redis.host")
	cfg.Redis.Port = viper.GetInt("redis.port")
	cfg.Redis.Password = viper.GetString("redis.password")
	cfg.Redis.DB = viper.GetInt("redis.db")

	// Anthropic
	cfg.Anthropic.APIKey = viper.GetString("anthropic.api_key")
	cfg.Anthropic.BaseURL = viper.GetString("anthropic.base_url")
	cfg.Anthropic.MaxTokens = viper.GetInt("anthropic.max_tokens")
	cfg.Anthropic.Timeout = viper.GetDuration("anthropic.timeout")

	// Runner
	cfg.Runner.TickInterval = viper.GetDuration("runner.tick_interval")
	cfg.Runner.BatchSize = viper.GetInt("runner.batch_size")
	cfg.Runner.LeaderKey = viper.GetString("runner.leader_key")
	cfg.Runner.LeaderTTL = viper.GetDuration("runner.leader_ttl")
	cfg.Runner.StuckThreshold = viper.GetDuration("runner.stuck_threshold")
	cfg.Runner.RetentionDays = viper.GetInt("runner.retention_days")
	cfg.Runner.QueueConcurrency = viper.GetInt("runner.queue_concurrency")
	cfg.Runner.ShutdownTimeout = viper.GetDuration("runner.shutdown_timeout")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "orbitdesk")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", true)

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "orbitdesk")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Anthropic defaults
	viper.SetDefault("anthropic.base_url", "https://api.anthropic.com")
	viper.SetDefault("anthropic.max_tokens", 4096)
	viper.SetDefault("anthropic.timeout", "5m")

	// Runner defaults
	viper.SetDefault("runner.tick_interval", "1m")
	viper.SetDefault("runner.batch_size", 50)
	viper.SetDefault("runner.leader_key", "agentrunner:leader")
	viper.SetDefault("runner.leader_ttl", "30s")
	viper.SetDefault("runner.stuck_threshold", "30m")
	viper.SetDefault("runner.retention_days", 90)
	viper.SetDefault("runner.queue_concurrency", 10)
	viper.SetDefault("runner.shutdown_timeout", "30s")
}
