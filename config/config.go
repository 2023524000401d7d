// Package config loads jobsmith configuration from YAML with catalog-backed
// defaults. Everything works with a zero config file: the default model
// chain, step ceiling, and command timeout are filled in at load time.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forgelabs/jobsmith/llmpool"
)

// ModelConfig is one entry in the failover chain.
type ModelConfig struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	RPM         int      `yaml:"rpm"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

// LimitsConfig bounds job execution.
type LimitsConfig struct {
	MaxSteps              int `yaml:"max_steps"`
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`
}

// WorkspaceConfig locates job directories.
type WorkspaceConfig struct {
	Root        string `yaml:"root"`
	AllowedRoot string `yaml:"allowed_root"`
}

// CheckpointConfig controls state persistence.
type CheckpointConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ScaffoldConfig controls project scaffolding policy.
type ScaffoldConfig struct {
	AutoDone *bool `yaml:"auto_done"`
}

// Config is the full jobsmith configuration.
type Config struct {
	Models      []ModelConfig    `yaml:"models"`
	Limits      LimitsConfig     `yaml:"limits"`
	Workspace   WorkspaceConfig  `yaml:"workspace"`
	Checkpoints CheckpointConfig `yaml:"checkpoints"`
	Scaffold    ScaffoldConfig   `yaml:"scaffold"`
}

// Default returns the built-in configuration: a flash-then-pro Gemini
// failover chain with catalog rate limits.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path and fills in defaults. A missing file yields the default
// configuration rather than an error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Models) == 0 {
		c.Models = []ModelConfig{
			{Model: "gemini-2.5-flash"},
			{Model: "gemini-2.5-pro"},
		}
	}
	for i := range c.Models {
		m := &c.Models[i]
		if info := llmpool.GetModelInfo(m.Model); info != nil {
			m.Model = info.ID
			if m.Provider == "" {
				m.Provider = info.Provider
			}
			if m.RPM == 0 {
				m.RPM = info.DefaultRPM
			}
		}
	}
	if c.Limits.MaxSteps == 0 {
		c.Limits.MaxSteps = 40
	}
	if c.Limits.CommandTimeoutSeconds == 0 {
		c.Limits.CommandTimeoutSeconds = 600
	}
	if c.Workspace.Root == "" {
		c.Workspace.Root = "jobs"
	}
	if c.Checkpoints.Path == "" {
		c.Checkpoints.Path = "jobs/checkpoints.db"
	}
}

func (c *Config) validate() error {
	for i, m := range c.Models {
		if m.Model == "" {
			return fmt.Errorf("config: models[%d] has no model id", i)
		}
		if m.Provider == "" {
			return fmt.Errorf("config: models[%d] (%s) has no provider and is not in the catalog", i, m.Model)
		}
		if m.RPM < 0 {
			return fmt.Errorf("config: models[%d] (%s) has negative rpm", i, m.Model)
		}
	}
	return nil
}

// CommandTimeout returns the shell timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Limits.CommandTimeoutSeconds) * time.Second
}

// ScaffoldAutoDone reports whether a verified scaffold completes the task.
// Defaults to true.
func (c *Config) ScaffoldAutoDone() bool {
	if c.Scaffold.AutoDone == nil {
		return true
	}
	return *c.Scaffold.AutoDone
}

// BuildPool constructs the rate-limited failover chain from the model list.
// API keys come from the environment per provider: GEMINI_API_KEY,
// OPENAI_API_KEY, ANTHROPIC_API_KEY, GROQ_API_KEY.
func (c *Config) BuildPool() (*llmpool.Failover, error) {
	limited := make([]*llmpool.RateLimited, 0, len(c.Models))
	for _, m := range c.Models {
		apiKey := os.Getenv(apiKeyVar(m.Provider))
		if apiKey == "" {
			return nil, fmt.Errorf("config: %s for model %s is not set", apiKeyVar(m.Provider), m.Model)
		}
		opts := []llmpool.GollmOption{llmpool.WithModel(m.Model)}
		if m.Temperature != nil {
			opts = append(opts, llmpool.WithTemperature(*m.Temperature))
		}
		if m.MaxTokens != nil {
			opts = append(opts, llmpool.WithMaxTokens(*m.MaxTokens))
		}
		backend, err := llmpool.NewGollmBackend(m.Provider, apiKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("config: backend %s/%s: %w", m.Provider, m.Model, err)
		}
		limited = append(limited, llmpool.NewRateLimited(backend, m.RPM))
	}
	return llmpool.NewFailover(limited...), nil
}

func apiKeyVar(provider string) string {
	switch provider {
	case "gemini", "google":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return "LLM_API_KEY"
	}
}
