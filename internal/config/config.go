// Package config loads the agent configuration from defaults, an optional
// YAML file, the environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Inference providers.
const (
	ProviderNative = "native"
	ProviderOpenAI = "openai"
)

// Config is the complete agent configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Startup    StartupConfig    `yaml:"startup"`
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type ServerConfig struct {
	ListenAddress   string        `yaml:"listenAddress"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// UpstreamConfig tunes the HTTP client of one upstream.
type UpstreamConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"maxRetries"`
	BreakerFailures uint32        `yaml:"breakerFailures"`
	BreakerTimeout  time.Duration `yaml:"breakerTimeout"`
}

type OllamaConfig struct {
	// Provider selects the native API or the OpenAI-compatible one
	Provider        string `yaml:"provider"`
	GenerateURL     string `yaml:"generateURL"`
	EmbedURL        string `yaml:"embedURL"`
	OpenAIBaseURL   string `yaml:"openAIBaseURL"`
	APIKey          string `yaml:"apiKey"`
	GenerationModel string `yaml:"generationModel"`
	EmbeddingModel  string `yaml:"embeddingModel"`

	UpstreamConfig `yaml:",inline"`
}

type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	VectorSize int    `yaml:"vectorSize"`
	Distance   string `yaml:"distance"`

	UpstreamConfig `yaml:",inline"`
}

type StartupConfig struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`

	// SeedClusterDocs adds the cluster operation notes to the sample documents
	SeedClusterDocs bool `yaml:"seedClusterDocs"`
}

type KubernetesConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Kubeconfig string `yaml:"kubeconfig"`

	// RefreshInterval between background usage aggregations; 0 disables them
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"serviceName"`
	OTLPEndpoint string `yaml:"otlpEndpoint"`
}

// Default returns the configuration of the reference deployment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   ":8000",
			ShutdownTimeout: 5 * time.Second,
		},
		Ollama: OllamaConfig{
			Provider:        ProviderNative,
			GenerateURL:     "http://ollama:11434/api/generate",
			EmbedURL:        "http://ollama:11434/api/embeddings",
			GenerationModel: "tinyllama",
			EmbeddingModel:  "all-minilm",
			UpstreamConfig: UpstreamConfig{
				Timeout:         120 * time.Second,
				BreakerFailures: 5,
				BreakerTimeout:  30 * time.Second,
			},
		},
		Qdrant: QdrantConfig{
			URL:        "http://qdrant:6333",
			Collection: "rag_memory",
			VectorSize: 384,
			Distance:   "Cosine",
			UpstreamConfig: UpstreamConfig{
				Timeout:         120 * time.Second,
				BreakerFailures: 5,
				BreakerTimeout:  30 * time.Second,
			},
		},
		Startup: StartupConfig{
			Attempts: 30,
			Interval: 2 * time.Second,
		},
		Kubernetes: KubernetesConfig{
			Enabled:         true,
			RefreshInterval: 30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "cluster-rag-agent",
		},
	}
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads the defaults, the file at path (skipped when empty) and the
// process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("OLLAMA_URL", &c.Ollama.GenerateURL)
	str("OLLAMA_EMBED_URL", &c.Ollama.EmbedURL)
	str("OLLAMA_OPENAI_URL", &c.Ollama.OpenAIBaseURL)
	str("OLLAMA_API_KEY", &c.Ollama.APIKey)
	str("OLLAMA_MODEL_NAME", &c.Ollama.GenerationModel)
	str("OLLAMA_EMBED_MODEL", &c.Ollama.EmbeddingModel)
	str("LLM_PROVIDER", &c.Ollama.Provider)
	str("QDRANT_URL", &c.Qdrant.URL)
	str("QDRANT_COLLECTION", &c.Qdrant.Collection)
	str("LISTEN_ADDRESS", &c.Server.ListenAddress)
	str("OTEL_SERVICE_NAME", &c.Telemetry.ServiceName)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)

	if v, ok := lookup("K8S_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse K8S_ENABLED=%q: %w", v, err)
		}
		c.Kubernetes.Enabled = enabled
	}
	return nil
}

// OpenAIURL returns the OpenAI-compatible base URL, derived from the
// generate URL unless set explicitly.
func (c *Config) OpenAIURL() (string, error) {
	if c.Ollama.OpenAIBaseURL != "" {
		return c.Ollama.OpenAIBaseURL, nil
	}
	u, err := url.Parse(c.Ollama.GenerateURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse generate URL: %w", err)
	}
	return u.Scheme + "://" + u.Host + "/v1", nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	for name, v := range map[string]string{
		"ollama.generateURL": c.Ollama.GenerateURL,
		"ollama.embedURL":    c.Ollama.EmbedURL,
		"qdrant.url":         c.Qdrant.URL,
	} {
		if err := validateURL(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.Ollama.Provider {
	case ProviderNative, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("ollama.provider: unsupported provider %q (supported: %s, %s)",
			c.Ollama.Provider, ProviderNative, ProviderOpenAI))
	}
	if strings.TrimSpace(c.Qdrant.Collection) == "" {
		errs = append(errs, errors.New("qdrant.collection: must not be empty"))
	}
	if c.Qdrant.VectorSize <= 0 {
		errs = append(errs, fmt.Errorf("qdrant.vectorSize: must be positive, got %d", c.Qdrant.VectorSize))
	}
	if c.Startup.Attempts <= 0 {
		errs = append(errs, fmt.Errorf("startup.attempts: must be positive, got %d", c.Startup.Attempts))
	}
	if c.Ollama.MaxRetries < 0 || c.Qdrant.MaxRetries < 0 {
		errs = append(errs, errors.New("maxRetries: must not be negative"))
	}

	return errors.Join(errs...)
}

func validateURL(v string) error {
	if v == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(v)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", v)
	}
	return nil
}
