package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by generation.provider and embedding.provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Search failure policies accepted by pipeline.search_failure_policy.
const (
	SearchFailureAbort    = "abort"
	SearchFailureGenerate = "generate"
)

// Config holds the GramGyan API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	Generation    GenerationConfig    `yaml:"generation"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Events        EventsConfig        `yaml:"events"`
	Auth          AuthConfig          `yaml:"auth"`
	CORS          CORSConfig          `yaml:"cors"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys List `yaml:"api_keys"`
}

// CORSConfig holds cross-origin settings for browser clients.
type CORSConfig struct {
	AllowedOrigins List `yaml:"allowed_origins"`
	AllowedHeaders List `yaml:"allowed_headers"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds record store connection settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            List   `yaml:"addrs"`
	Password         string `yaml:"password"`
	Standalone       bool   `yaml:"standalone"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout and vector index settings.
type StorageConfig struct {
	KeyPrefix       string `yaml:"key_prefix"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// GenerationConfig holds text generation provider settings.
type GenerationConfig struct {
	Provider   string `yaml:"provider"` // gemini, openai
	Model      string `yaml:"model"`
	APIKeys    List   `yaml:"api_keys"` // tried in order; rotated on rate limiting
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // gemini, openai
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	APIKeys    List   `yaml:"api_keys"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// PipelineConfig holds report resolution settings.
type PipelineConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MatchCount          int     `yaml:"match_count"`
	SearchFailurePolicy string  `yaml:"search_failure_policy"` // abort, generate
}

// TranscriptionConfig holds audio transcription settings.
type TranscriptionConfig struct {
	AudioMIMEType   string `yaml:"audio_mime_type"`
	MaxAudioBytes   int64  `yaml:"max_audio_bytes"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
	// AllowPrivateAddrs lets media URLs resolve to loopback and private networks (local dev only).
	AllowPrivateAddrs bool `yaml:"allow_private_addrs"`
}

// EventsConfig holds report event publishing settings. No brokers disables publishing.
type EventsConfig struct {
	Brokers         List   `yaml:"brokers"`
	Topic           string `yaml:"topic"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
}

// Enabled reports whether events should be published.
func (c EventsConfig) Enabled() bool { return len(c.Brokers) > 0 }

// List is a string list that also accepts a single comma-separated scalar,
// so values like ${GEMINI_API_KEYS} can expand to several entries.
type List []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = splitList(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, splitList(it)...)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", node.Line)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the environment first.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment references in raw YAML and decodes, defaults and validates it.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 15
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120 // a run makes up to three provider calls
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "gramgyan:"
	}
	if c.Storage.HNSWM <= 0 {
		c.Storage.HNSWM = 16
	}
	if c.Storage.HNSWEFConstruct <= 0 {
		c.Storage.HNSWEFConstruct = 200
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderGemini
	}
	if c.Generation.Model == "" && c.Generation.Provider == ProviderGemini {
		c.Generation.Model = "gemini-1.5-flash"
	}
	if len(c.Generation.APIKeys) == 0 {
		c.Generation.APIKeys = providerKeysFromEnv(c.Generation.Provider)
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 60
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderGemini
	}
	if c.Embedding.Model == "" && c.Embedding.Provider == ProviderGemini {
		c.Embedding.Model = "embedding-001"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 768
	}
	if len(c.Embedding.APIKeys) == 0 {
		c.Embedding.APIKeys = providerKeysFromEnv(c.Embedding.Provider)
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Pipeline.SimilarityThreshold == 0 {
		c.Pipeline.SimilarityThreshold = 0.80
	}
	if c.Pipeline.MatchCount <= 0 {
		c.Pipeline.MatchCount = 1
	}
	if c.Pipeline.SearchFailurePolicy == "" {
		c.Pipeline.SearchFailurePolicy = SearchFailureAbort
	}
	if c.Transcription.AudioMIMEType == "" {
		c.Transcription.AudioMIMEType = "audio/mp4"
	}
	if c.Transcription.MaxAudioBytes <= 0 {
		c.Transcription.MaxAudioBytes = 20 << 20
	}
	if c.Transcription.FetchTimeoutSec <= 0 {
		c.Transcription.FetchTimeoutSec = 30
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "gramgyan.report.processed"
	}
	if c.Events.WriteTimeoutSec <= 0 {
		c.Events.WriteTimeoutSec = 5
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = List{"*"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = List{"authorization", "x-client-info", "apikey", "content-type"}
	}
}

// providerKeyEnv lists, per provider, the environment variables consulted in order
// when a section configures no api_keys.
var providerKeyEnv = map[string][]string{
	ProviderGemini: {"GEMINI_API_KEYS", "GEMINI_API_KEY"},
	ProviderOpenAI: {"OPENAI_API_KEY"},
}

func providerKeysFromEnv(provider string) List {
	for _, name := range providerKeyEnv[provider] {
		if keys := splitList(os.Getenv(name)); len(keys) > 0 {
			return keys
		}
	}
	return nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if err := validateProvider("generation", c.Generation.Provider, c.Generation.Model, c.Generation.APIKeys); err != nil {
		return err
	}
	if err := validateProvider("embedding", c.Embedding.Provider, c.Embedding.Model, c.Embedding.APIKeys); err != nil {
		return err
	}
	if t := c.Pipeline.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("pipeline.similarity_threshold must be in (0, 1], got %g", t)
	}
	switch c.Pipeline.SearchFailurePolicy {
	case SearchFailureAbort, SearchFailureGenerate:
	default:
		return fmt.Errorf(
			"pipeline.search_failure_policy must be %q or %q, got %q",
			SearchFailureAbort, SearchFailureGenerate, c.Pipeline.SearchFailurePolicy,
		)
	}
	return nil
}

func validateProvider(section, provider, model string, keys List) error {
	switch provider {
	case ProviderGemini:
		if len(keys) == 0 {
			return fmt.Errorf("%s.api_keys is required for provider %q", section, provider)
		}
	case ProviderOpenAI:
		if model == "" {
			return fmt.Errorf("%s.model is required for provider %q", section, provider)
		}
	default:
		return fmt.Errorf("%s.provider must be %q or %q, got %q", section, ProviderGemini, ProviderOpenAI, provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file, for tests and `go run` from subdirectories
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
