package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Inference InferenceConfig
	Layout    LayoutConfig
	Splitter  SplitterConfig
	Pipeline  PipelineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds batch queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// InferenceProviderConfig holds settings for a single inference provider.
type InferenceProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// InferenceConfig holds semantic inference settings with multi-provider
// fallback support.
type InferenceConfig struct {
	Primary   InferenceProviderConfig `mapstructure:"primary"`
	Secondary InferenceProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary inference provider config, or nil
// if not configured.
func (i *InferenceConfig) SecondaryConfig() *InferenceProviderConfig {
	if i.Secondary.Provider != "" {
		return &i.Secondary
	}
	return nil
}

// LayoutConfig holds layout analysis service settings.
type LayoutConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	QueryBatchSize int    `mapstructure:"query_batch_size"`
}

// SplitterConfig holds document split service settings.
type SplitterConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// PipelineConfig holds extraction pipeline tuning knobs.
type PipelineConfig struct {
	GuardrailRatioHigh float64 `mapstructure:"guardrail_ratio_high"`
	GuardrailRatioLow  float64 `mapstructure:"guardrail_ratio_low"`
	PageByteBudget     int     `mapstructure:"page_byte_budget"`
}

// Load reads configuration from environment variables with the INVOSPLIT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOSPLIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invosplit")
	v.SetDefault("db.password", "invosplit_secret")
	v.SetDefault("db.name", "invosplit_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invosplit-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 3)

	// Inference defaults
	v.SetDefault("inference.primary.provider", "claude")
	v.SetDefault("inference.primary.api_key", "")
	v.SetDefault("inference.primary.default_model", "")
	v.SetDefault("inference.primary.timeout_secs", 120)
	v.SetDefault("inference.secondary.provider", "")
	v.SetDefault("inference.secondary.api_key", "")
	v.SetDefault("inference.secondary.default_model", "")
	v.SetDefault("inference.secondary.timeout_secs", 120)

	// Layout defaults
	v.SetDefault("layout.endpoint", "http://localhost:8090")
	v.SetDefault("layout.api_key", "")
	v.SetDefault("layout.timeout_secs", 60)
	v.SetDefault("layout.query_batch_size", 20)

	// Splitter defaults
	v.SetDefault("splitter.endpoint", "http://localhost:8091")
	v.SetDefault("splitter.timeout_secs", 60)

	// Pipeline defaults
	v.SetDefault("pipeline.guardrail_ratio_high", 50.0)
	v.SetDefault("pipeline.guardrail_ratio_low", 0.02)
	v.SetDefault("pipeline.page_byte_budget", 1500)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "INVOSPLIT_SERVER_PORT",
		"server.read_timeout":  "INVOSPLIT_SERVER_READ_TIMEOUT",
		"server.write_timeout": "INVOSPLIT_SERVER_WRITE_TIMEOUT",
		"server.environment":   "INVOSPLIT_SERVER_ENVIRONMENT",
		"db.host":              "INVOSPLIT_DB_HOST",
		"db.port":              "INVOSPLIT_DB_PORT",
		"db.user":              "INVOSPLIT_DB_USER",
		"db.password":          "INVOSPLIT_DB_PASSWORD",
		"db.name":              "INVOSPLIT_DB_NAME",
		"db.sslmode":           "INVOSPLIT_DB_SSLMODE",
		"db.max_open":          "INVOSPLIT_DB_MAX_OPEN",
		"db.max_idle":          "INVOSPLIT_DB_MAX_IDLE",
		"s3.region":            "INVOSPLIT_S3_REGION",
		"s3.bucket":            "INVOSPLIT_S3_BUCKET",
		"s3.endpoint":          "INVOSPLIT_S3_ENDPOINT",
		"s3.access_key":        "INVOSPLIT_S3_ACCESS_KEY",
		"s3.secret_key":        "INVOSPLIT_S3_SECRET_KEY",
		"s3.max_file_size_mb":  "INVOSPLIT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":    "INVOSPLIT_S3_PRESIGN_EXPIRY",
		"log.level":            "INVOSPLIT_LOG_LEVEL",
		"log.format":           "INVOSPLIT_LOG_FORMAT",
		"cors.allowed_origins":     "INVOSPLIT_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "INVOSPLIT_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":        "INVOSPLIT_QUEUE_CONCURRENCY",
		"inference.primary.provider":        "INVOSPLIT_INFERENCE_PRIMARY_PROVIDER",
		"inference.primary.api_key":         "INVOSPLIT_INFERENCE_PRIMARY_API_KEY",
		"inference.primary.default_model":   "INVOSPLIT_INFERENCE_PRIMARY_DEFAULT_MODEL",
		"inference.primary.timeout_secs":    "INVOSPLIT_INFERENCE_PRIMARY_TIMEOUT_SECS",
		"inference.secondary.provider":      "INVOSPLIT_INFERENCE_SECONDARY_PROVIDER",
		"inference.secondary.api_key":       "INVOSPLIT_INFERENCE_SECONDARY_API_KEY",
		"inference.secondary.default_model": "INVOSPLIT_INFERENCE_SECONDARY_DEFAULT_MODEL",
		"inference.secondary.timeout_secs":  "INVOSPLIT_INFERENCE_SECONDARY_TIMEOUT_SECS",
		"layout.endpoint":               "INVOSPLIT_LAYOUT_ENDPOINT",
		"layout.api_key":                "INVOSPLIT_LAYOUT_API_KEY",
		"layout.timeout_secs":           "INVOSPLIT_LAYOUT_TIMEOUT_SECS",
		"layout.query_batch_size":       "INVOSPLIT_LAYOUT_QUERY_BATCH_SIZE",
		"splitter.endpoint":             "INVOSPLIT_SPLITTER_ENDPOINT",
		"splitter.timeout_secs":         "INVOSPLIT_SPLITTER_TIMEOUT_SECS",
		"pipeline.guardrail_ratio_high": "INVOSPLIT_PIPELINE_GUARDRAIL_RATIO_HIGH",
		"pipeline.guardrail_ratio_low":  "INVOSPLIT_PIPELINE_GUARDRAIL_RATIO_LOW",
		"pipeline.page_byte_budget":     "INVOSPLIT_PIPELINE_PAGE_BYTE_BUDGET",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOSPLIT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOSPLIT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Inference = InferenceConfig{
		Primary: InferenceProviderConfig{
			Provider:     v.GetString("inference.primary.provider"),
			APIKey:       v.GetString("inference.primary.api_key"),
			DefaultModel: v.GetString("inference.primary.default_model"),
			TimeoutSecs:  v.GetInt("inference.primary.timeout_secs"),
		},
		Secondary: InferenceProviderConfig{
			Provider:     v.GetString("inference.secondary.provider"),
			APIKey:       v.GetString("inference.secondary.api_key"),
			DefaultModel: v.GetString("inference.secondary.default_model"),
			TimeoutSecs:  v.GetInt("inference.secondary.timeout_secs"),
		},
	}

	cfg.Layout = LayoutConfig{
		Endpoint:       v.GetString("layout.endpoint"),
		APIKey:         v.GetString("layout.api_key"),
		TimeoutSecs:    v.GetInt("layout.timeout_secs"),
		QueryBatchSize: v.GetInt("layout.query_batch_size"),
	}

	cfg.Splitter = SplitterConfig{
		Endpoint:    v.GetString("splitter.endpoint"),
		TimeoutSecs: v.GetInt("splitter.timeout_secs"),
	}

	cfg.Pipeline = PipelineConfig{
		GuardrailRatioHigh: v.GetFloat64("pipeline.guardrail_ratio_high"),
		GuardrailRatioLow:  v.GetFloat64("pipeline.guardrail_ratio_low"),
		PageByteBudget:     v.GetInt("pipeline.page_byte_budget"),
	}

	return cfg, nil
}
