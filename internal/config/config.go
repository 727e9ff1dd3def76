package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderTEI    = "tei"
)

// Default dataset locations, relative to the working directory.
const (
	DefaultNationalPath = "project_data/oesm23nat/national_M2023_dl.xlsx"
	DefaultGeoPath      = "project_data/oesm24all/all_data_M_2024.xlsx"
)

// DefaultTEIModel is the sentence-transformers model served by text-embeddings-inference.
const DefaultTEIModel = "sentence-transformers/paraphrase-MiniLM-L3-v2"

// Config holds the monty configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Datasets   DatasetsConfig   `yaml:"datasets"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Cache      CacheConfig      `yaml:"cache"`
	Matching   MatchingConfig   `yaml:"matching"`
	Extraction ExtractionConfig `yaml:"extraction"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // default: determined by env
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
	// WarmUp loads datasets and embeds the occupation corpus before serving.
	WarmUp bool `yaml:"warm_up"`
}

// DatasetsConfig locates the occupational spreadsheets.
type DatasetsConfig struct {
	NationalPath string `yaml:"national_path" validate:"required"`
	GeoPath      string `yaml:"geo_path" validate:"required"`
	GeoMaxRows   int    `yaml:"geo_max_rows" validate:"gte=0"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" validate:"oneof=openai gemini tei"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	Dimensions int    `yaml:"dimensions" validate:"gte=0"`
	// Instruction is prepended to the resume text and to every occupation description,
	// empty for none.
	Instruction string  `yaml:"instruction"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxRetries  int     `yaml:"max_retries" validate:"gte=0"`
	BatchSize   int     `yaml:"batch_size" validate:"gte=0"`
	RPS         float64 `yaml:"rps" validate:"gte=0"` // 0 = unlimited
	Burst       int     `yaml:"burst" validate:"gte=0"`
}

// CacheConfig holds the embedding cache store settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs" validate:"required_if=Enabled true"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db" validate:"gte=0"`
	TTLHours         int      `yaml:"ttl_hours" validate:"gte=0"` // 0 = no expiry
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// MatchingConfig holds ranking settings.
type MatchingConfig struct {
	TopN int `yaml:"top_n" validate:"gte=0"`
}

// ExtractionConfig holds resume parsing settings.
type ExtractionConfig struct {
	NameMinFontSize float64 `yaml:"name_min_font_size" validate:"gte=0"`
}

// RateLimitConfig throttles API clients by remote address.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" validate:"gte=0"` // 0 = disabled
	Burst int     `yaml:"burst" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		c.HTTP.MaxUploadBytes = 5 << 20
	}
	if c.Datasets.NationalPath == "" {
		c.Datasets.NationalPath = DefaultNationalPath
	}
	if c.Datasets.GeoPath == "" {
		c.Datasets.GeoPath = DefaultGeoPath
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderTEI
	}
	if c.Embedding.Model == "" && c.Embedding.Provider == ProviderTEI {
		c.Embedding.Model = DefaultTEIModel
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "monty:emb_cache:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Matching.TopN <= 0 {
		c.Matching.TopN = 3
	}
	if c.Extraction.NameMinFontSize <= 0 {
		c.Extraction.NameMinFontSize = 25
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldErrors(verrs)
		}
		return fmt.Errorf("validate: %w", err)
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderGemini:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", c.Embedding.Provider)
		}
		if c.Embedding.Provider == ProviderOpenAI && c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", c.Embedding.Provider)
		}
	case ProviderTEI:
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.base_url is required for provider %q", c.Embedding.Provider)
		}
	}
	return nil
}

// fieldErrors flattens validator output into "section.field: tag" messages.
func fieldErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Config.HTTP.Port -> http.port
		path := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", yamlPath(path), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

var yamlNames = map[string]string{
	"HTTP": "http", "Port": "port",
	"Datasets": "datasets", "NationalPath": "national_path", "GeoPath": "geo_path", "GeoMaxRows": "geo_max_rows",
	"Embedding": "embedding", "Provider": "provider", "BaseURL": "base_url", "Dimensions": "dimensions",
	"MaxRetries": "max_retries", "BatchSize": "batch_size", "RPS": "rps", "Burst": "burst",
	"Cache": "cache", "Addrs": "addrs", "DB": "db", "TTLHours": "ttl_hours",
	"Matching": "matching", "TopN": "top_n",
	"Extraction": "extraction", "NameMinFontSize": "name_min_font_size",
	"RateLimit": "ratelimit", "Logging": "logging", "Level": "level",
}

func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		if n, ok := yamlNames[p]; ok {
			parts[i] = n
		}
	}
	return strings.Join(parts, ".")
}

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
