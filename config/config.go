// Package config loads mediagraph configuration from YAML with environment
// overrides for credentials and the output directory.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hdelmont/mediagraph/fal"
	"github.com/hdelmont/mediagraph/ollama"
	"github.com/hdelmont/mediagraph/vision"
)

// Config is the full mediagraph configuration.
type Config struct {
	// OutputDir is the host-designated directory produced media is
	// written into.
	OutputDir string `yaml:"output_dir"`

	// FFmpegBinary is the external media binary ("ffmpeg" on PATH when
	// empty).
	FFmpegBinary string `yaml:"ffmpeg_binary"`

	Fal    fal.Config    `yaml:"fal"`
	OpenAI vision.Config `yaml:"openai"`
	Ollama OllamaConfig  `yaml:"ollama"`
}

// OllamaConfig configures the local LLM endpoint.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		OutputDir:    "output",
		FFmpegBinary: "ffmpeg",
		Fal:          fal.DefaultConfig(),
		OpenAI:       vision.DefaultConfig(),
		Ollama: OllamaConfig{
			Host:  ollama.DefaultHost,
			Model: "llava:7b",
		},
	}
}

// Load reads a YAML config file on top of the defaults and applies
// environment overrides. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets credentials and the output directory come from the
// environment, overriding file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("FAL_KEY"); v != "" {
		c.Fal.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.Host = v
	}
	if v := os.Getenv("MEDIAGRAPH_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
}

// Validate checks the fields every node depends on.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}

// EnsureOutputDir creates the output directory when missing.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
