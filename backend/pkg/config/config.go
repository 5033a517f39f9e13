package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "digital-garden/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Static content
	DataDir          string
	PackagesManifest string
	WatchData        bool

	// GitHub
	GitHubUsername  string
	GitHubToken     string
	GitHubAPIURL    string
	GitHubRateLimit float64 // requests per second
	ProjectLimit    int

	// Package registries
	NPMRegistryURL string
	NPMAPIURL      string
	PyPIURL        string

	// Sponsorship
	SponsorsAccount string

	// Proxy cache
	CacheTTL time.Duration

	// Neo4j export, disabled when URI is empty
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "5000"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", ""),
		DataDir:          getEnv("DATA_DIR", "public/data"),
		PackagesManifest: getEnv("PACKAGES_MANIFEST", "packages.yaml"),
		WatchData:        getEnvBool("WATCH_DATA", true),
		GitHubUsername:   getEnv("GITHUB_USERNAME", ""),
		GitHubToken:      getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL:     getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubRateLimit:  getEnvFloat("GITHUB_RATE_LIMIT", 5),
		ProjectLimit:     getEnvInt("PROJECT_LIMIT", 12),
		NPMRegistryURL:   getEnv("NPM_REGISTRY_URL", "https://registry.npmjs.org"),
		NPMAPIURL:        getEnv("NPM_API_URL", "https://api.npmjs.org"),
		PyPIURL:          getEnv("PYPI_URL", "https://pypi.org"),
		SponsorsAccount:  getEnv("SPONSORS_ACCOUNT", ""),
		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		Neo4jURI:         getEnv("NEO4J_URI", ""),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", ""),
	}

	if cfg.SponsorsAccount == "" {
		cfg.SponsorsAccount = cfg.GitHubUsername
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Port == "" {
		return apperrors.NewConfigMissingRequired("PORT")
	}
	if c.DataDir == "" {
		return apperrors.NewConfigMissingRequired("DATA_DIR")
	}
	if c.GitHubAPIURL == "" {
		return apperrors.NewConfigMissingRequired("GITHUB_API_URL")
	}
	if c.GitHubRateLimit <= 0 {
		return fmt.Errorf("GITHUB_RATE_LIMIT must be positive")
	}
	if c.ProjectLimit <= 0 {
		return fmt.Errorf("PROJECT_LIMIT must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if c.Neo4jURI != "" && c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required when NEO4J_URI is set")
	}
	// GitHub token and username are optional; the static projects file is used without them
	return nil
}

// GitHubEnabled reports whether projects can be sourced from GitHub
func (c *Config) GitHubEnabled() bool {
	return c.GitHubUsername != ""
}

// Neo4jEnabled reports whether the graph export sink is configured
func (c *Config) Neo4jEnabled() bool {
	return c.Neo4jURI != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes":
		return true
	case "0", "false", "FALSE", "no":
		return false
	default:
		return defaultValue
	}
}
