package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names
const (
	EnvConfig       = "APPBRIDGE_TEST_CONFIG"
	EnvBaseURL      = "APPBRIDGE_MOCK_URL"
	EnvOrchestrator = "APPBRIDGE_MOCK_ORCHESTRATOR"
	EnvAttempts     = "APPBRIDGE_MOCK_ATTEMPTS"
	EnvPollInterval = "APPBRIDGE_MOCK_POLL_INTERVAL"
	EnvStubs        = "APPBRIDGE_MOCK_STUBS"
	EnvLogLevel     = "APPBRIDGE_LOG_LEVEL"
	EnvLogFormat    = "APPBRIDGE_LOG_FORMAT"
)

// envKeys maps environment variables to config keys.
var envKeys = []struct {
	env string
	key string
}{
	{EnvBaseURL, "baseUrl"},
	{EnvOrchestrator, "orchestrator"},
	{EnvAttempts, "maxAttempts"},
	{EnvPollInterval, "pollInterval"},
	{EnvStubs, "stubs"},
	{EnvLogLevel, "logLevel"},
	{EnvLogFormat, "logFormat"},
}

// LoadEnv applies the environment variables that are set to cfg.
func LoadEnv(cfg *Config) error {
	for _, e := range envKeys {
		v, ok := os.LookupEnv(e.env)
		if !ok || v == "" {
			continue
		}
		if err := cfg.set(e.key, v, SourceEnv); err != nil {
			if fe, ok := err.(*FieldError); ok {
				fe.Message = e.env + ": " + fe.Message
			}
			return err
		}
	}
	return nil
}

// Set assigns the string form of a value to key, recording source.
func (c *Config) Set(key, value, source string) error {
	return c.set(key, value, source)
}

func (c *Config) set(key, value, source string) error {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	switch key {
	case "baseUrl":
		c.BaseURL = value
	case "orchestrator":
		c.Orchestrator = value
	case "setupScript":
		c.SetupScript = value
	case "composeFile":
		c.ComposeFile = value
	case "containerImage":
		c.ContainerImage = value
	case "stubs":
		c.StubsGlob = value
	case "logLevel":
		c.LogLevel = value
	case "logFormat":
		c.LogFormat = value
	case "maxAttempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &FieldError{Field: key, Source: source, Message: "not an integer: " + strconv.Quote(value)}
		}
		c.MaxAttempts = n
	case "pollInterval":
		d, err := parseDuration(value)
		if err != nil {
			return &FieldError{Field: key, Source: source, Message: err.Error()}
		}
		c.PollInterval = d
	default:
		return &FieldError{Field: key, Source: source, Message: "unknown setting"}
	}
	c.Sources[key] = source
	return nil
}

// parseDuration accepts Go duration strings and bare integers, which are
// read as milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}
