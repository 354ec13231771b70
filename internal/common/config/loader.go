// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SCRAPER_TOKEN or LLM_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path. It uses its own
// viper instance so repeated loads do not see each other's state.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in the working directory, its parents, and the
// project root so binaries and tests resolve it regardless of cwd.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from cwd looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig picks up well-known env variables for secrets that are
// still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Scraper.Token == "" {
		if val := os.Getenv("SCRAPER_API_TOKEN"); val != "" {
			cfg.Scraper.Token = val
		}
	}
	if cfg.LLM.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":5000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Scraper.ActorID == "" {
		cfg.Scraper.ActorID = "compass~crawler-google-places"
	}
	if cfg.Scraper.MaxPlaces == 0 {
		cfg.Scraper.MaxPlaces = 10
	}
	if cfg.Scraper.MaxImages == 0 {
		cfg.Scraper.MaxImages = 5
	}
	if cfg.Scraper.PollInterval == 0 {
		cfg.Scraper.PollInterval = 5000
	}
	if cfg.Scraper.RunTimeout == 0 {
		cfg.Scraper.RunTimeout = 300000
	}

	applyTierDefaults(&cfg.LLM.Classification, 1000, 60000)
	applyTierDefaults(&cfg.LLM.Analysis, 5000, 120000)
	applyTierDefaults(&cfg.LLM.Aggregation, 3000, 120000)

	if cfg.LLM.Retry.InitialDelay == 0 {
		cfg.LLM.Retry.InitialDelay = 100
	}
	if cfg.LLM.Retry.MaxDelay == 0 {
		cfg.LLM.Retry.MaxDelay = 5000
	}

	if cfg.Pipeline.RestaurantWorkers == 0 {
		cfg.Pipeline.RestaurantWorkers = 3
	}
	if cfg.Pipeline.ClassificationWorkers == 0 {
		cfg.Pipeline.ClassificationWorkers = 5
	}
	if cfg.Pipeline.AnalysisWorkers == 0 {
		cfg.Pipeline.AnalysisWorkers = 3
	}
	if len(cfg.Pipeline.ImagePriority) == 0 {
		cfg.Pipeline.ImagePriority = []ImagePriorityPattern{
			{Pattern: "googleusercontent", Rank: 0},
			{Pattern: "gps-cs-s", Rank: 1},
		}
	}

	if cfg.Scan.DefaultRadiusKm == 0 {
		cfg.Scan.DefaultRadiusKm = 5.0
	}
	if cfg.Scan.CacheTTL == 0 {
		cfg.Scan.CacheTTL = 60000
	}
	if cfg.Scan.BackgroundThreshold == 0 {
		cfg.Scan.BackgroundThreshold = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

func applyTierDefaults(tier *ModelTierConfig, maxTokens, timeout int) {
	if tier.MaxTokens == 0 {
		tier.MaxTokens = maxTokens
	}
	if tier.Timeout == 0 {
		tier.Timeout = timeout
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url is required")
	}
	if cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if cfg.LLM.Classification.Model == "" || cfg.LLM.Analysis.Model == "" || cfg.LLM.Aggregation.Model == "" {
		return fmt.Errorf("llm model names are required for all three tiers")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
