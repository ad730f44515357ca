package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are the names searched for in the working directory,
// in order.
var LocalConfigFileNames = []string{".appbridge-test.yaml", ".appbridge-test.yml"}

// FindLocalConfig returns the first config file found in dir, or "" if
// there is none.
func FindLocalConfig(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// fileConfig mirrors Config for decoding. Pointer fields tell an absent key
// from an explicit zero.
type fileConfig struct {
	BaseURL        *string `yaml:"baseUrl"`
	MaxAttempts    *int    `yaml:"maxAttempts"`
	PollInterval   *string `yaml:"pollInterval"`
	StubsGlob      *string `yaml:"stubs"`
	Orchestrator   *string `yaml:"orchestrator"`
	SetupScript    *string `yaml:"setupScript"`
	ComposeFile    *string `yaml:"composeFile"`
	ContainerImage *string `yaml:"containerImage"`
	LogLevel       *string `yaml:"logLevel"`
	LogFormat      *string `yaml:"logFormat"`
}

// LoadFile reads the YAML config file at path and applies it to cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return &ConfigError{Path: path, Message: err.Error()}
	}

	if err := applyFile(cfg, &fc); err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			return &ConfigError{Path: path, Message: fe.Error()}
		}
		return err
	}
	cfg.Path = path
	return nil
}

func applyFile(cfg *Config, fc *fileConfig) error {
	setString(cfg, "baseUrl", &cfg.BaseURL, fc.BaseURL, SourceFile)
	setString(cfg, "stubs", &cfg.StubsGlob, fc.StubsGlob, SourceFile)
	setString(cfg, "orchestrator", &cfg.Orchestrator, fc.Orchestrator, SourceFile)
	setString(cfg, "setupScript", &cfg.SetupScript, fc.SetupScript, SourceFile)
	setString(cfg, "composeFile", &cfg.ComposeFile, fc.ComposeFile, SourceFile)
	setString(cfg, "containerImage", &cfg.ContainerImage, fc.ContainerImage, SourceFile)
	setString(cfg, "logLevel", &cfg.LogLevel, fc.LogLevel, SourceFile)
	setString(cfg, "logFormat", &cfg.LogFormat, fc.LogFormat, SourceFile)

	if fc.MaxAttempts != nil {
		cfg.MaxAttempts = *fc.MaxAttempts
		cfg.Sources["maxAttempts"] = SourceFile
	}
	if fc.PollInterval != nil {
		d, err := parseDuration(*fc.PollInterval)
		if err != nil {
			return &FieldError{Field: "pollInterval", Source: SourceFile, Message: err.Error()}
		}
		cfg.PollInterval = d
		cfg.Sources["pollInterval"] = SourceFile
	}
	return nil
}

func setString(cfg *Config, key string, dst *string, v *string, source string) {
	if v == nil {
		return
	}
	*dst = *v
	cfg.Sources[key] = source
}

// Load is Resolve followed by Validate.
func Load() (*Config, error) {
	cfg, err := Resolve()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve builds the configuration from defaults, the config file and the
// environment without validating it, so that callers can apply flags with
// Set before calling Validate.
func Resolve() (*Config, error) {
	cfg := NewDefault()

	path := os.Getenv(EnvConfig)
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = FindLocalConfig(cwd)
		}
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := LoadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
