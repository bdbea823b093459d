package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the storyline configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int      `yaml:"port"`
	ReadTimeoutSec    int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int      `yaml:"write_timeout_sec"`
	ShutdownSec       int      `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	DialTimeoutSec   int      `yaml:"dial_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// IndexingMode values.
const (
	IndexingSync  = "sync"
	IndexingAsync = "async"
)

// IndexingConfig controls when story embeddings are computed.
type IndexingConfig struct {
	Mode           string `yaml:"mode"` // sync (default) | async
	Workers        int    `yaml:"workers"`
	QueueSize      int    `yaml:"queue_size"`
	JobTimeoutSec  int    `yaml:"job_timeout_sec"`
	ReindexOnStart bool   `yaml:"reindex_on_start"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string      `yaml:"provider"` // label for metrics and logs
	APIKey     string      `yaml:"api_key"`
	BaseURL    string      `yaml:"base_url"`
	Model      string      `yaml:"model"`
	Dimensions int         `yaml:"dimensions"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Cache      CacheConfig `yaml:"cache"`
	Retry      RetryConfig `yaml:"retry"`
}

// CacheConfig controls the query embedding cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// RetryConfig bounds retries of rate-limited embedding calls.
type RetryConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`
	InitialIntervalMS int `yaml:"initial_interval_ms"`
	MaxIntervalMS     int `yaml:"max_interval_ms"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		c.HTTP.RequestTimeoutSec = 20
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.DialTimeoutSec <= 0 {
		c.Database.DialTimeoutSec = 5
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-ada-002"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Embedding.Retry.MaxAttempts <= 0 {
		c.Embedding.Retry.MaxAttempts = 3
	}
	if c.Embedding.Retry.InitialIntervalMS <= 0 {
		c.Embedding.Retry.InitialIntervalMS = 200
	}
	if c.Embedding.Retry.MaxIntervalMS <= 0 {
		c.Embedding.Retry.MaxIntervalMS = 2000
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Indexing.Mode == "" {
		c.Indexing.Mode = IndexingSync
	}
	if c.Indexing.Workers <= 0 {
		c.Indexing.Workers = 2
	}
	if c.Indexing.QueueSize <= 0 {
		c.Indexing.QueueSize = 256
	}
	if c.Indexing.JobTimeoutSec <= 0 {
		c.Indexing.JobTimeoutSec = 30
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "storyline"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	for i, addr := range c.Database.Addrs {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("database.addrs[%d] is empty", i)
		}
	}
	if c.Embedding.APIKey == "" {
		return errors.New("embedding.api_key is required")
	}
	switch c.Indexing.Mode {
	case IndexingSync, IndexingAsync:
	default:
		return fmt.Errorf("indexing.mode must be %q or %q, got %q", IndexingSync, IndexingAsync, c.Indexing.Mode)
	}
	if c.Embedding.Retry.InitialIntervalMS > c.Embedding.Retry.MaxIntervalMS {
		return fmt.Errorf("embedding.retry.initial_interval_ms (%d) exceeds max_interval_ms (%d)",
			c.Embedding.Retry.InitialIntervalMS, c.Embedding.Retry.MaxIntervalMS)
	}
	if c.Embedding.Cache.TTLSec < 0 {
		return fmt.Errorf("embedding.cache.ttl_sec must not be negative, got %d", c.Embedding.Cache.TTLSec)
	}
	return nil
}

// Seconds converts a whole-second config value to a duration.
func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Millis converts a millisecond config value to a duration.
func Millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
