package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the failsight server.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Embed    EmbedConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// DataConfig selects the record-store backend the eight collections are
// loaded from.
type DataConfig struct {
	Source string // "csv" or "postgres"
	CSVDir string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string // optional; empty disables the embedding cache
}

type EmbedConfig struct {
	Provider string // "ollama", "tei", or "lexical"
	Timeout  time.Duration
	Ollama   OllamaConfig
	TEI      TEIConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type TEIConfig struct {
	BaseURL string
}

// AnalysisConfig carries tunables for the pattern miners and synthesizer.
type AnalysisConfig struct {
	SimilarityThreshold float64
	Clusters            int
	ClusterSeed         int64
	SampleSize          int
	Currency            string
	CurrencyRate        float64 // multiplier applied to USD-denominated base rates
}

var validSources = map[string]bool{
	"csv":      true,
	"postgres": true,
}

var validEmbedProviders = map[string]bool{
	"ollama":  true,
	"tei":     true,
	"lexical": true,
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("FAILSIGHT_PORT", 8080),
			Env:  envString("FAILSIGHT_ENV", "development"),
		},
		Data: DataConfig{
			Source: envString("DATA_SOURCE", "csv"),
			CSVDir: envString("DATA_CSV_DIR", "./data"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Embed: EmbedConfig{
			Provider: envString("EMBED_PROVIDER", "lexical"),
			Timeout:  envDuration("EMBED_TIMEOUT", 10*time.Second),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_EMBED_MODEL", "all-minilm"),
			},
			TEI: TEIConfig{
				BaseURL: envString("TEI_BASE_URL", "http://localhost:8081"),
			},
		},
		Analysis: AnalysisConfig{
			SimilarityThreshold: envFloat("ANALYSIS_SIMILARITY_THRESHOLD", 0.7),
			Clusters:            envInt("ANALYSIS_KMEANS_CLUSTERS", 5),
			ClusterSeed:         int64(envInt("ANALYSIS_KMEANS_SEED", 42)),
			SampleSize:          envInt("ANALYSIS_SAMPLE_SIZE", 500),
			Currency:            envString("BUSINESS_CURRENCY", "INR"),
			CurrencyRate:        envFloat("BUSINESS_CURRENCY_RATE", 83.0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !validSources[c.Data.Source] {
		return fmt.Errorf("DATA_SOURCE must be one of csv, postgres; got %q", c.Data.Source)
	}
	if c.Data.Source == "csv" && c.Data.CSVDir == "" {
		return fmt.Errorf("DATA_CSV_DIR is required when DATA_SOURCE is csv")
	}
	if c.Data.Source == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE is postgres")
	}

	if !validEmbedProviders[c.Embed.Provider] {
		return fmt.Errorf("EMBED_PROVIDER must be one of ollama, tei, lexical; got %q", c.Embed.Provider)
	}
	if c.Embed.Provider == "ollama" && !hasHTTPScheme(c.Embed.Ollama.BaseURL) {
		return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", c.Embed.Ollama.BaseURL)
	}
	if c.Embed.Provider == "tei" && !hasHTTPScheme(c.Embed.TEI.BaseURL) {
		return fmt.Errorf("TEI_BASE_URL must start with http:// or https://, got %q", c.Embed.TEI.BaseURL)
	}

	if c.Analysis.SimilarityThreshold <= 0 || c.Analysis.SimilarityThreshold >= 1 {
		return fmt.Errorf("ANALYSIS_SIMILARITY_THRESHOLD must be in (0, 1); got %v", c.Analysis.SimilarityThreshold)
	}
	if c.Analysis.Clusters < 2 {
		return fmt.Errorf("ANALYSIS_KMEANS_CLUSTERS must be at least 2; got %d", c.Analysis.Clusters)
	}
	if c.Analysis.SampleSize < 1 {
		return fmt.Errorf("ANALYSIS_SAMPLE_SIZE must be positive; got %d", c.Analysis.SampleSize)
	}
	if c.Analysis.CurrencyRate <= 0 {
		return fmt.Errorf("BUSINESS_CURRENCY_RATE must be positive; got %v", c.Analysis.CurrencyRate)
	}

	return nil
}

func hasHTTPScheme(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
