package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// AgentEnv maps agent fields to environment variable names.
type AgentEnv struct {
	Name       string
	Provider   string
	BaseURL    string
	Model      string
	Token      string
	Deployment string
	APIVersion string
	AuthType   string
}

var visionEnv = &AgentEnv{
	Name:       "INTAKE_VISION_NAME",
	Provider:   "INTAKE_VISION_PROVIDER_NAME",
	BaseURL:    "INTAKE_VISION_BASE_URL",
	Model:      "INTAKE_VISION_MODEL_NAME",
	Token:      "INTAKE_VISION_TOKEN",
	Deployment: "INTAKE_VISION_DEPLOYMENT",
	APIVersion: "INTAKE_VISION_API_VERSION",
	AuthType:   "INTAKE_VISION_AUTH_TYPE",
}

var reasoningEnv = &AgentEnv{
	Name:       "INTAKE_REASONING_NAME",
	Provider:   "INTAKE_REASONING_PROVIDER_NAME",
	BaseURL:    "INTAKE_REASONING_BASE_URL",
	Model:      "INTAKE_REASONING_MODEL_NAME",
	Token:      "INTAKE_REASONING_TOKEN",
	Deployment: "INTAKE_REASONING_DEPLOYMENT",
	APIVersion: "INTAKE_REASONING_API_VERSION",
	AuthType:   "INTAKE_REASONING_AUTH_TYPE",
}

// AgentConfig describes one model endpoint.
type AgentConfig struct {
	Name       string `toml:"name"`
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Token      string `toml:"token"`
	Deployment string `toml:"deployment"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
}

// AgentsConfig holds the vision endpoint used for document images and the
// reasoning endpoint used for cross-validation. Unset reasoning fields
// inherit the vision values.
type AgentsConfig struct {
	Vision    AgentConfig `toml:"vision"`
	Reasoning AgentConfig `toml:"reasoning"`
}

// Finalize applies defaults, environment variable overrides, and validation
// to both agents.
func (c *AgentsConfig) Finalize() error {
	c.Vision.loadEnv(visionEnv)
	c.Reasoning.loadEnv(reasoningEnv)

	inherited := c.Vision
	inherited.Name = ""
	inherited.Merge(&c.Reasoning)
	c.Reasoning = inherited

	if c.Vision.Name == "" {
		c.Vision.Name = "intake-vision"
	}
	if c.Reasoning.Name == "" {
		c.Reasoning.Name = "intake-reasoning"
	}

	if _, err := c.Vision.Build(); err != nil {
		return fmt.Errorf("vision: %w", err)
	}
	if _, err := c.Reasoning.Build(); err != nil {
		return fmt.Errorf("reasoning: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentsConfig) Merge(overlay *AgentsConfig) {
	c.Vision.Merge(&overlay.Vision)
	c.Reasoning.Merge(&overlay.Reasoning)
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	mergeString(&c.Name, overlay.Name)
	mergeString(&c.Provider, overlay.Provider)
	mergeString(&c.BaseURL, overlay.BaseURL)
	mergeString(&c.Model, overlay.Model)
	mergeString(&c.Token, overlay.Token)
	mergeString(&c.Deployment, overlay.Deployment)
	mergeString(&c.APIVersion, overlay.APIVersion)
	mergeString(&c.AuthType, overlay.AuthType)
}

// Build converts the endpoint into a go-agents configuration, starting from
// the go-agents defaults.
func (c *AgentConfig) Build() (gaconfig.AgentConfig, error) {
	cfg := gaconfig.DefaultAgentConfig()

	if cfg.Provider == nil {
		cfg.Provider = &gaconfig.ProviderConfig{}
	}
	if cfg.Provider.Options == nil {
		cfg.Provider.Options = make(map[string]any)
	}
	if cfg.Model == nil {
		cfg.Model = &gaconfig.ModelConfig{}
	}

	if c.Name != "" {
		cfg.Name = c.Name
	}
	if c.Provider != "" {
		cfg.Provider.Name = c.Provider
	}
	if c.BaseURL != "" {
		cfg.Provider.BaseURL = c.BaseURL
	}
	if c.Model != "" {
		cfg.Model.Name = c.Model
	}

	setOption := func(key, v string) {
		if v != "" {
			cfg.Provider.Options[key] = v
		}
	}

	setOption("token", c.Token)
	setOption("deployment", c.Deployment)
	setOption("api_version", c.APIVersion)
	setOption("auth_type", c.AuthType)

	if cfg.Name == "" {
		return cfg, fmt.Errorf("name required")
	}
	if cfg.Provider.Name == "" {
		return cfg, fmt.Errorf("provider name required")
	}
	return cfg, nil
}

func (c *AgentConfig) loadEnv(env *AgentEnv) {
	envString(env.Name, &c.Name)
	envString(env.Provider, &c.Provider)
	envString(env.BaseURL, &c.BaseURL)
	envString(env.Model, &c.Model)
	envString(env.Token, &c.Token)
	envString(env.Deployment, &c.Deployment)
	envString(env.APIVersion, &c.APIVersion)
	envString(env.AuthType, &c.AuthType)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
