package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "sk-test"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "async", mutate: func(c *Config) { c.Indexing.Mode = IndexingAsync }},
		{name: "port zero", mutate: func(c *Config) { c.HTTP.Port = 0 }, wantErr: "http.port"},
		{name: "port too big", mutate: func(c *Config) { c.HTTP.Port = 70000 }, wantErr: "http.port"},
		{name: "no addrs", mutate: func(c *Config) { c.Database.Addrs = nil }, wantErr: "database.addrs"},
		{name: "blank addr", mutate: func(c *Config) { c.Database.Addrs = []string{""} }, wantErr: "database.addrs[0]"},
		{name: "no api key", mutate: func(c *Config) { c.Embedding.APIKey = "" }, wantErr: "embedding.api_key"},
		{name: "bad mode", mutate: func(c *Config) { c.Indexing.Mode = "lazy" }, wantErr: "indexing.mode"},
		{
			name: "retry intervals inverted",
			mutate: func(c *Config) {
				c.Embedding.Retry.InitialIntervalMS = 5000
				c.Embedding.Retry.MaxIntervalMS = 100
			},
			wantErr: "initial_interval_ms",
		},
		{name: "negative ttl", mutate: func(c *Config) { c.Embedding.Cache.TTLSec = -1 }, wantErr: "ttl_sec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 3000 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.Model != "text-embedding-ada-002" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Indexing.Mode != IndexingSync {
		t.Errorf("mode = %q", cfg.Indexing.Mode)
	}
	if cfg.Embedding.Retry.MaxAttempts != 3 {
		t.Errorf("retry attempts = %d", cfg.Embedding.Retry.MaxAttempts)
	}
	if cfg.Storage.KeyPrefix != "storyline" {
		t.Errorf("prefix = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Cache.Enabled {
		t.Error("query cache must be off by default")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 9090, RequestTimeoutSec: 5},
		Indexing: IndexingConfig{Mode: IndexingAsync, Workers: 8},
		Storage:  StorageConfig{KeyPrefix: "stories-test"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9090 || cfg.HTTP.RequestTimeoutSec != 5 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Indexing.Mode != IndexingAsync || cfg.Indexing.Workers != 8 {
		t.Errorf("indexing = %+v", cfg.Indexing)
	}
	if cfg.Storage.KeyPrefix != "stories-test" {
		t.Errorf("prefix = %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("STORYLINE_TEST_KEY", "sk-abc")

	got := string(expandEnvVars([]byte("a: ${STORYLINE_TEST_KEY}\nb: ${STORYLINE_UNSET_VAR:-fallback}\nc: ${STORYLINE_UNSET_VAR}")))
	want := "a: sk-abc\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("STORYLINE_TEST_OPENAI_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
http:
  port: 4000
  cors_origins: ["http://localhost:3000"]
database:
  addrs: ["${STORYLINE_TEST_REDIS:-localhost:6379}"]
embedding:
  api_key: ${STORYLINE_TEST_OPENAI_KEY}
  cache:
    enabled: true
    ttl_sec: 600
indexing:
  mode: async
  reindex_on_start: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 4000 || len(cfg.HTTP.CORSOrigins) != 1 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Embedding.APIKey != "sk-from-env" || !cfg.Embedding.Cache.Enabled || cfg.Embedding.Cache.TTLSec != 600 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Indexing.Mode != IndexingAsync || !cfg.Indexing.ReindexOnStart || cfg.Indexing.Workers != 2 {
		t.Errorf("indexing = %+v", cfg.Indexing)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 4000\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CORS_ORIGIN", "")
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%s): %v", env, err)
			}
		})
	}
}

func TestLoad_ProdDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CORS_ORIGIN", "")
	t.Setenv("INDEXING_MODE", "")

	cfg, err := Load("prod")
	if err != nil {
		t.Fatalf("Load(prod): %v", err)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "*" {
		t.Errorf("cors_origins = %q, want [*]", cfg.HTTP.CORSOrigins)
	}
	if cfg.Database.Addrs[0] != "redis:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Indexing.Mode != IndexingAsync {
		t.Errorf("indexing.mode = %q", cfg.Indexing.Mode)
	}
}

func TestLoad_ProdRequiresRedisAddr(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "")

	_, err := Load("prod")
	if err == nil || !strings.Contains(err.Error(), "database.addrs") {
		t.Fatalf("err = %v, want database.addrs error", err)
	}
}
