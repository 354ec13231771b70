// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string   `mapstructure:"address"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScraperConfig holds settings for the places scraping actor API.
type ScraperConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Token        string `mapstructure:"token"`
	ActorID      string `mapstructure:"actor_id"`
	MaxPlaces    int    `mapstructure:"max_places"`
	MaxImages    int    `mapstructure:"max_images"`
	PollInterval int    `mapstructure:"poll_interval"` // milliseconds
	RunTimeout   int    `mapstructure:"run_timeout"`   // milliseconds, whole-run budget
}

// LLMConfig holds settings for the vision/text completion API and the three
// model tiers the pipeline uses.
type LLMConfig struct {
	BaseURL string      `mapstructure:"base_url"`
	APIKey  string      `mapstructure:"api_key"`
	Retry   RetryConfig `mapstructure:"retry"`

	Classification ModelTierConfig `mapstructure:"classification"`
	Analysis       ModelTierConfig `mapstructure:"analysis"`
	Aggregation    ModelTierConfig `mapstructure:"aggregation"`
}

// ModelTierConfig is one model tier: name, response-size ceiling and the
// mandatory per-call timeout.
type ModelTierConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// RetryConfig is the backoff policy applied to each external call.
type RetryConfig struct {
	MaxRetries   int `mapstructure:"max_retries"`
	InitialDelay int `mapstructure:"initial_delay"` // milliseconds
	MaxDelay     int `mapstructure:"max_delay"`     // milliseconds
}

// PipelineConfig sizes the three bounded worker pools and carries the image
// priority patterns (substring pattern -> rank; unmatched URLs rank last).
type PipelineConfig struct {
	RestaurantWorkers     int                    `mapstructure:"restaurant_workers"`
	ClassificationWorkers int                    `mapstructure:"classification_workers"`
	AnalysisWorkers       int                    `mapstructure:"analysis_workers"`
	ImagePriority         []ImagePriorityPattern `mapstructure:"image_priority"`
}

type ImagePriorityPattern struct {
	Pattern string `mapstructure:"pattern"`
	Rank    int    `mapstructure:"rank"`
}

// ScanConfig tunes the scan-nearby endpoint.
type ScanConfig struct {
	DefaultRadiusKm     float64 `mapstructure:"default_radius_km"`
	CacheTTL            int     `mapstructure:"cache_ttl"` // milliseconds
	BackgroundThreshold int     `mapstructure:"background_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
