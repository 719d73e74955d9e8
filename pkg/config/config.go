package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Assembly AssemblyAIConfig
	Webhook  WebhookConfig
	AI       AIWorkerConfig
	Billing  BillingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"w1_crm"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" default:"your-refresh-secret-change-in-production"`
	AccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
	RefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"168h"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"w1-recordings"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string `envconfig:"STORAGE_PUBLIC_URL" default:""`
}

// LLMConfig holds the chat-completions API configuration used for summaries
type LLMConfig struct {
	APIKey      string  `envconfig:"LLM_API_KEY"`
	BaseURL     string  `envconfig:"LLM_API_URL" default:"https://api.groq.com"`
	Model       string  `envconfig:"LLM_MODEL" default:"llama-3.1-70b-versatile"`
	Temperature float64 `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"8000"`
}

// AssemblyAIConfig holds transcription provider configuration
type AssemblyAIConfig struct {
	APIKey         string `envconfig:"ASSEMBLYAI_API_KEY"`
	BaseURL        string `envconfig:"ASSEMBLYAI_BASE_URL"`
	WebhookSecret  string `envconfig:"ASSEMBLYAI_WEBHOOK_SECRET"`
	WebhookBaseURL string `envconfig:"ASSEMBLYAI_WEBHOOK_BASE_URL"`
	Language       string `envconfig:"ASSEMBLYAI_LANGUAGE" default:"pt"`
}

// WebhookConfig tunes the outbound webhook dispatcher
type WebhookConfig struct {
	Workers          int           `envconfig:"WEBHOOK_WORKERS" default:"3"`
	PollInterval     time.Duration `envconfig:"WEBHOOK_POLL_INTERVAL" default:"15s"`
	DebounceWindow   time.Duration `envconfig:"WEBHOOK_DEBOUNCE_WINDOW" default:"3s"`
	DeliveryTimeout  time.Duration `envconfig:"WEBHOOK_DELIVERY_TIMEOUT" default:"10s"`
	DefaultMaxTries  int           `envconfig:"WEBHOOK_MAX_ATTEMPTS" default:"5"`
	ClaimBatchSize   int           `envconfig:"WEBHOOK_CLAIM_BATCH" default:"20"`
	VisibilityWindow time.Duration `envconfig:"WEBHOOK_VISIBILITY_WINDOW" default:"5m"`
	LogRetention     time.Duration `envconfig:"WEBHOOK_LOG_RETENTION" default:"720h"`
	EndpointRate     float64       `envconfig:"WEBHOOK_ENDPOINT_RATE" default:"5"`
	EndpointBurst    int           `envconfig:"WEBHOOK_ENDPOINT_BURST" default:"10"`
}

// AIWorkerConfig tunes the summary worker pool
type AIWorkerConfig struct {
	Workers      int           `envconfig:"AI_WORKERS" default:"2"`
	PollInterval time.Duration `envconfig:"AI_POLL_INTERVAL" default:"30s"`
	// Submitted jobs older than this are polled against the provider in
	// case the completion webhook never arrived.
	SubmittedTimeout time.Duration `envconfig:"AI_SUBMITTED_TIMEOUT" default:"10m"`
}

// BillingConfig tunes subscription handling
type BillingConfig struct {
	DefaultPlanCode string `envconfig:"BILLING_DEFAULT_PLAN" default:"essencial"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment == "production" {
		if c.JWT.AccessSecret == "your-access-secret-change-in-production" ||
			c.JWT.RefreshSecret == "your-refresh-secret-change-in-production" {
			return fmt.Errorf("JWT secrets must be set in production")
		}
	}
	if c.Webhook.Workers < 1 {
		return fmt.Errorf("WEBHOOK_WORKERS must be at least 1")
	}
	if c.Webhook.DefaultMaxTries < 1 {
		return fmt.Errorf("WEBHOOK_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
