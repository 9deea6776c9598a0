package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	QueryPath   string // hcl files with call blocks
	CatalogPath string // hcl function manifests, optional

	// Function and Arguments describe a single call given on the command
	// line instead of a query file.
	Function  string
	Arguments []string

	EngineURL     string // socket.io runtime; empty uses the in-process engine
	DiagnosticsDB string // sqlite file; empty disables persistence

	// Remote engine connection. Ignored without EngineURL.
	EngineNamespace          string
	EngineInsecureSkipVerify bool
	EngineConnectTimeout     time.Duration // 0 uses the client default

	LogFormat       string // "text" (default) or "json"
	LogLevel        string // "info" (default), "debug", "warn" or "error"
	HealthcheckPort int
	WorkerCount     int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.QueryPath != "" && cfg.Function != "" {
		return nil, errors.New("QueryPath and Function are mutually exclusive")
	}
	if len(cfg.Arguments) > 0 && cfg.Function == "" {
		return nil, errors.New("Arguments require a Function")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WorkerCount must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 {
		return nil, fmt.Errorf("HealthcheckPort must not be negative, got %d", cfg.HealthcheckPort)
	}
	if cfg.EngineConnectTimeout < 0 {
		return nil, fmt.Errorf("EngineConnectTimeout must not be negative, got %s", cfg.EngineConnectTimeout)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}
