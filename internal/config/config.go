// Package config reads configuration from environment variables and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration shared by the CLI and the daemon.
type Config struct {
	// Browser debug endpoint
	DebugHost string
	DebugPort int

	// Output settings
	OutputDir string
	SaveFiles bool

	// Protocol timeouts
	NavigateTimeoutMS int
	EvalTimeoutMS     int

	// Browser launch behavior
	AutoLaunch bool
	ProfileDir string
	StartURL   string

	// Daemon settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and an optional .env
// file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		DebugHost:         getEnvOrDefault("WEBTOTEXT_DEBUG_HOST", "localhost"),
		DebugPort:         getEnvIntOrDefault("WEBTOTEXT_DEBUG_PORT", 9222),
		OutputDir:         getEnvOrDefault("WEBTOTEXT_OUTPUT_DIR", "extracted_texts"),
		SaveFiles:         getEnvBoolOrDefault("WEBTOTEXT_SAVE_FILES", true),
		NavigateTimeoutMS: getEnvIntOrDefault("WEBTOTEXT_NAVIGATE_TIMEOUT_MS", 30000),
		EvalTimeoutMS:     getEnvIntOrDefault("WEBTOTEXT_EVAL_TIMEOUT_MS", 15000),
		AutoLaunch:        getEnvBoolOrDefault("WEBTOTEXT_AUTO_LAUNCH", false),
		ProfileDir:        getEnvOrDefault("WEBTOTEXT_PROFILE_DIR", ""),
		StartURL:          getEnvOrDefault("WEBTOTEXT_START_URL", ""),
		BindAddr:          getEnvOrDefault("WEBTOTEXT_BIND_ADDR", "127.0.0.1:8177"),
		PortCandidates:    getEnvListOrDefault("WEBTOTEXT_PORT_CANDIDATES", []string{"127.0.0.1:8178", "127.0.0.1:8179"}),
		PortAutoFallback:  getEnvBoolOrDefault("WEBTOTEXT_PORT_AUTO_FALLBACK", true),
		LogLevel:          strings.ToLower(getEnvOrDefault("WEBTOTEXT_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("WEBTOTEXT_LOG_FILE", "logs/webtotext.log"),
	}

	if cfg.NavigateTimeoutMS < 1000 {
		cfg.NavigateTimeoutMS = 1000
	}
	if cfg.EvalTimeoutMS < 1000 {
		cfg.EvalTimeoutMS = 1000
	}
	return cfg, nil
}

// DebugURL returns the HTTP base of the browser's control endpoint.
func (c *Config) DebugURL() string {
	return fmt.Sprintf("http://%s:%d", c.DebugHost, c.DebugPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
