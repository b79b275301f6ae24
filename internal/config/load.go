package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "secretagent.yaml"

// EnvPrefix prefixes environment overrides, e.g. SECRETAGENT_ECHO_CALL=true or
// SECRETAGENT_BACKENDS__OPENAI__API_KEY=sk-...
const EnvPrefix = "SECRETAGENT_"

// Settings is the process configuration loaded at startup.
type Settings struct {
	Service      string                   `koanf:"service"`
	Model        string                   `koanf:"model"`
	EchoCall     bool                     `koanf:"echo_call"`
	EchoResponse bool                     `koanf:"echo_response"`
	EchoService  bool                     `koanf:"echo_service"`
	Backends     map[string]BackendConfig `koanf:"backends"`
}

// BackendConfig configures one backend adapter.
type BackendConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	DefaultModel string        `koanf:"default_model"`
	MaxTokens    int           `koanf:"max_tokens"`
	Timeout      time.Duration `koanf:"timeout"`
	// APIVersion pins a provider API version where the service has one.
	APIVersion string `koanf:"api_version"`
	// OnRejection is "raise" or "sentinel"; empty selects the adapter default.
	OnRejection string `koanf:"on_rejection"`
}

// Rejection policies.
const (
	RejectionRaise    = "raise"
	RejectionSentinel = "sentinel"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (a missing file is not an error) and then environment
// overrides. An empty path selects DefaultPath.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath
	}
	k := koanf.New(delim)

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, delim, func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", delim, -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Settings
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for name, b := range cfg.Backends {
		b.APIKey = substituteEnvVars(b.APIKey)
		cfg.Backends[name] = b
	}

	return &cfg, nil
}

// Options returns the store-level keys that were set.
func (s *Settings) Options() Options {
	opts := Options{}
	if s.Service != "" {
		opts[KeyService] = s.Service
	}
	if s.Model != "" {
		opts[KeyModel] = s.Model
	}
	if s.EchoCall {
		opts[KeyEchoCall] = true
	}
	if s.EchoResponse {
		opts[KeyEchoResponse] = true
	}
	if s.EchoService {
		opts[KeyEchoService] = true
	}
	return opts
}

// Backend returns the configuration for the named backend, or the zero value.
func (s *Settings) Backend(name string) BackendConfig {
	if s == nil || s.Backends == nil {
		return BackendConfig{}
	}
	return s.Backends[name]
}

// APIKeyOr returns the configured key, falling back to the first non-empty
// environment variable in envVars.
func (b BackendConfig) APIKeyOr(envVars ...string) string {
	if b.APIKey != "" {
		return b.APIKey
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
