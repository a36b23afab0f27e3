package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeFileSystem serves a fixed set of paths and records env file loads.
type fakeFileSystem struct {
	files     map[string]bool
	envVars   map[string]string
	envLoaded []string
}

func (f *fakeFileSystem) Exists(path string) bool {
	return f.files[path]
}

func (f *fakeFileSystem) LoadEnv(path string) error {
	f.envLoaded = append(f.envLoaded, path)
	for k, v := range f.envVars {
		os.Setenv(k, v)
	}
	return nil
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := writeTempConfig(t, `
name: chiro-backend
environment: staging
server:
  port: 9090
storage:
  provider: s3
speech:
  base_url: https://eastus.api.cognitive.microsoft.com/speechtotext/v3.0
  api_key: speech-key
llm:
  base_url: https://example.openai.azure.com
  deployment: gpt-4o
`)

	var cfg AppConfig
	err := LoadConfig("chiro-backend", &cfg, WithConfigFile(path))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Name != "chiro-backend" {
		t.Errorf("expected name chiro-backend, got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment staging, got %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Provider != "s3" {
		t.Errorf("expected storage provider s3, got %q", cfg.Storage.Provider)
	}
	if cfg.Speech.APIKey != "speech-key" {
		t.Errorf("expected speech api key, got %q", cfg.Speech.APIKey)
	}
	if cfg.LLM.Deployment != "gpt-4o" {
		t.Errorf("expected deployment gpt-4o, got %q", cfg.LLM.Deployment)
	}
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	path := writeTempConfig(t, `
name: chiro-backend
speech:
  api_key: from-yaml
`)
	t.Setenv("SPEECH_API_KEY", "from-env")

	var cfg AppConfig
	if err := LoadConfig("chiro-backend", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Speech.APIKey != "from-env" {
		t.Errorf("expected env value to win, got %q", cfg.Speech.APIKey)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	fs := &fakeFileSystem{
		files:   map[string]bool{"./cmd/chiro-backend/.env": true},
		envVars: map[string]string{"LLM_API_KEY": "env-file-key"},
	}
	t.Cleanup(func() { os.Unsetenv("LLM_API_KEY") })

	var cfg AppConfig
	if err := LoadConfig("chiro-backend", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if len(fs.envLoaded) != 1 || fs.envLoaded[0] != "./cmd/chiro-backend/.env" {
		t.Errorf("expected .env load from cmd dir, got %v", fs.envLoaded)
	}
	if cfg.LLM.APIKey != "env-file-key" {
		t.Errorf("expected api key from .env, got %q", cfg.LLM.APIKey)
	}
}

func TestFindFile_PrefersCmdDir(t *testing.T) {
	fs := &fakeFileSystem{files: map[string]bool{
		"./cmd/chiro/config.yml": true,
		"./config.yml":           true,
	}}
	got := findFile(fs, "chiro-backend", "config.yml")
	if got != "./cmd/chiro/config.yml" {
		t.Errorf("expected cmd dir match via short name, got %q", got)
	}
}

func TestFindFile_FullNameDirWinsOverShortName(t *testing.T) {
	fs := &fakeFileSystem{files: map[string]bool{
		"./cmd/chiro-backend/config.yml": true,
		"./cmd/chiro/config.yml":         true,
	}}
	if got := findFile(fs, "chiro-backend", "config.yml"); got != "./cmd/chiro-backend/config.yml" {
		t.Errorf("expected full service name dir preferred, got %q", got)
	}
}

func TestFindFile_FallsBackToRoot(t *testing.T) {
	fs := &fakeFileSystem{files: map[string]bool{"./config.yml": true}}
	if got := findFile(fs, "chiro-backend", "config.yml"); got != "./config.yml" {
		t.Errorf("expected root match, got %q", got)
	}
	if got := findFile(fs, "chiro-backend", ".env"); got != "" {
		t.Errorf("expected empty result for missing file, got %q", got)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("SPEECH_API_KEY")

	want := []string{"speech_api_key", "speech.api.key", "speech.api_key"}
	has := func(v string) bool {
		for _, item := range variants {
			if item == v {
				return true
			}
		}
		return false
	}

	for _, v := range want {
		if !has(v) {
			t.Errorf("expected variant %q in %v", v, variants)
		}
	}
	if len(variants) != 3 {
		t.Errorf("expected 3 deduped variants, got %v", variants)
	}

	single := envKeyVariants("HOME")
	if len(single) != 1 || single[0] != "home" {
		t.Errorf("expected single lowercase variant, got %v", single)
	}
}

func validAppConfig() AppConfig {
	var cfg AppConfig
	cfg.Name = "chiro-backend"
	cfg.Storage.Provider = "azblob"
	cfg.Speech.BaseURL = "https://eastus.api.cognitive.microsoft.com/speechtotext/v3.0"
	cfg.Speech.APIKey = "speech-key"
	cfg.LLM.BaseURL = "https://example.openai.azure.com"
	cfg.LLM.Deployment = "gpt-4o"
	cfg.ApplyDefaults()
	return cfg
}

func TestAppConfig_ApplyDefaults(t *testing.T) {
	var cfg AppConfig
	cfg.Pipeline.URLExpiry = 30 * time.Minute
	cfg.ApplyDefaults()

	if cfg.Name != "chiro-backend" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %q", cfg.Environment)
	}
	if cfg.LLM.Dialect != "azopenai" {
		t.Errorf("expected azopenai dialect default, got %q", cfg.LLM.Dialect)
	}
	if cfg.Observability.Endpoint != "localhost:4318" || !cfg.Observability.Insecure {
		t.Errorf("expected insecure local OTLP default, got %+v", cfg.Observability)
	}
	if cfg.Observability.SampleRate != 1.0 {
		t.Errorf("expected full sampling default, got %f", cfg.Observability.SampleRate)
	}
	if cfg.Pipeline.URLExpiry != 30*time.Minute {
		t.Errorf("expected configured url expiry kept, got %v", cfg.Pipeline.URLExpiry)
	}
	if cfg.Logging.ServiceName != "chiro-backend" {
		t.Errorf("expected service name propagated to logging, got %q", cfg.Logging.ServiceName)
	}
}

func TestAppConfig_Validate(t *testing.T) {
	cfg := validAppConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestAppConfig_Validate_Sections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantSub string
	}{
		{"bad environment", func(c *AppConfig) { c.Environment = "qa" }, "environment"},
		{"bad storage provider", func(c *AppConfig) { c.Storage.Provider = "gcs" }, "config.storage"},
		{"missing speech key", func(c *AppConfig) { c.Speech.APIKey = "" }, "config.speech"},
		{"missing llm base url", func(c *AppConfig) { c.LLM.BaseURL = "" }, "config.llm"},
		{"bad sample rate", func(c *AppConfig) { c.Observability.SampleRate = 2 }, "sample_rate"},
		{"missing deployment", func(c *AppConfig) { c.LLM.Deployment = "" }, "deployment"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validAppConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("expected error mentioning %q, got: %v", tc.wantSub, err)
			}
		})
	}
}
