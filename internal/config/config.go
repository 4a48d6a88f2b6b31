package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	TargetGemini    = "gemini"
	TargetMedSigLIP = "medsiglip"
	TargetAll       = "all"
)

// Config holds all environmentally dependent settings for the prober.
type Config struct {
	GeminiAPIKey       string `env:"VP_GEMINI_API_KEY"`
	LegacyGeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel        string `env:"VP_GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiPrompt       string `env:"VP_GEMINI_PROMPT" envDefault:"Connection test. Reply with the single word OK."`

	MedSigLIPURL string `env:"VP_MEDSIGLIP_URL" envDefault:"http://localhost:5001"`

	Target            string `env:"VP_TARGET" envDefault:"gemini"`
	RequestTimeoutSec int    `env:"VP_REQUEST_TIMEOUT_SEC" envDefault:"0"`
	LogLevel          string `env:"VP_LOG_LEVEL" envDefault:"info"`

	HistoryDSN string `env:"VP_HISTORY_DSN"`

	WatchIntervalSec int `env:"VP_WATCH_INTERVAL_SEC" envDefault:"60"`
	BreakerThreshold int `env:"VP_BREAKER_THRESHOLD" envDefault:"3"`
	BreakerOpenSec   int `env:"VP_BREAKER_OPEN_SEC" envDefault:"300"`
}

// Validate ensures that all required configuration is present and valid.
func (c *Config) Validate() error {
	switch c.Target {
	case TargetGemini, TargetMedSigLIP, TargetAll:
	default:
		return fmt.Errorf("VP_TARGET must be one of %s, %s, %s (got %q)", TargetGemini, TargetMedSigLIP, TargetAll, c.Target)
	}
	if c.NeedsGemini() && c.APIKey() == "" {
		return fmt.Errorf("VP_GEMINI_API_KEY (or GEMINI_API_KEY) is required for target %q", c.Target)
	}
	if c.NeedsMedSigLIP() && c.MedSigLIPURL == "" {
		return fmt.Errorf("VP_MEDSIGLIP_URL is required for target %q", c.Target)
	}
	if c.RequestTimeoutSec < 0 {
		return fmt.Errorf("VP_REQUEST_TIMEOUT_SEC cannot be negative")
	}
	if c.WatchIntervalSec < 1 {
		return fmt.Errorf("VP_WATCH_INTERVAL_SEC must be at least 1")
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("VP_BREAKER_THRESHOLD must be at least 1")
	}
	if c.BreakerOpenSec < 0 {
		return fmt.Errorf("VP_BREAKER_OPEN_SEC cannot be negative")
	}
	return nil
}

// APIKey returns the Gemini key, preferring the prefixed variable.
func (c *Config) APIKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.LegacyGeminiAPIKey
}

func (c *Config) NeedsGemini() bool {
	return c.Target == TargetGemini || c.Target == TargetAll
}

func (c *Config) NeedsMedSigLIP() bool {
	return c.Target == TargetMedSigLIP || c.Target == TargetAll
}

// Debug reports whether outbound request logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSec) * time.Second
}

func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenSec) * time.Second
}

// Load reads the process environment, filling gaps from envFile when it exists.
// An empty envFile means ".env" in the working directory. Variables already set
// in the process take precedence over the file; overrides take precedence over both.
func Load(envFile string, overrides map[string]string) (*Config, error) {
	environ := environMap(os.Environ())

	if envFile == "" {
		envFile = ".env"
	}
	fileValues, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		log.Printf("[Config] 📄 Loaded %d values from %s", len(fileValues), envFile)
		for k, v := range fileValues {
			if _, ok := environ[k]; !ok {
				environ[k] = v
			}
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	for k, v := range overrides {
		environ[k] = v
	}

	return FromEnvironment(environ)
}

// FromEnvironment parses a config from an explicit variable set.
// Callers that probe a target run Validate on the result.
func FromEnvironment(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Target = strings.ToLower(strings.TrimSpace(cfg.Target))
	return cfg, nil
}

func environMap(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
