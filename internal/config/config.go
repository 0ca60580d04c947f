package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the runtime configuration from agentforge.yaml.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Server     ServerConfig     `yaml:"server"`
	Ghostfolio GhostfolioConfig `yaml:"ghostfolio"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Memory     MemoryConfig     `yaml:"memory"`
	News       NewsConfig       `yaml:"news"`
	Congress   CongressConfig   `yaml:"congress"`
	Eval       EvalConfig       `yaml:"eval"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GhostfolioConfig points at the portfolio backend.
type GhostfolioConfig struct {
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig holds model settings. The API key usually arrives via
// ${OPENAI_API_KEY} interpolation rather than being written into the file.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// MemoryConfig defines the persistent store.
type MemoryConfig struct {
	Path       string   `yaml:"path"`
	HistoryTTL Duration `yaml:"history_ttl"`
}

// Duration wraps time.Duration so YAML values like "72h" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// NewsConfig defines the external headline feed.
type NewsConfig struct {
	FeedURL string `yaml:"feed_url"`
}

// CongressConfig defines the congressional trading data feed. The API key
// usually arrives via ${QUIVER_AUTHORIZATION_TOKEN} interpolation; the tool
// is only registered when a key is present.
type CongressConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// EvalConfig defines offline evaluation settings.
type EvalConfig struct {
	DatasetDir  string       `yaml:"dataset_dir"`
	Concurrency int          `yaml:"concurrency"`
	BaselineDir string       `yaml:"baseline_dir"`
	Report      ReportConfig `yaml:"report"`
}

// ReportConfig defines where regression reports go. Leave Repo empty to
// disable GitHub issue publishing.
type ReportConfig struct {
	GitHubToken string `yaml:"github_token"`
	Repo        string `yaml:"repo"` // "owner/name"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Ghostfolio: GhostfolioConfig{
			BaseURL: "http://localhost:3333",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Memory: MemoryConfig{
			Path:       "agentforge.db",
			HistoryTTL: Duration(30 * 24 * time.Hour),
		},
		Eval: EvalConfig{
			DatasetDir:  "evals/datasets",
			Concurrency: 4,
			BaselineDir: "evals/baselines",
		},
	}
}

// Load reads and parses a config YAML file, interpolating ${VAR_NAME}
// references from the environment first. Returns default config if the
// file doesn't exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	interpolated := interpolateEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match // Leave unresolved if not set.
	})
}
