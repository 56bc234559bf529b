package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("DEEPWORK_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Session configuration
	if v := os.Getenv("DEEPWORK_STUDY_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.Session.StudyMinutes = minutes
		}
	}

	if v := os.Getenv("DEEPWORK_BREAK_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.Session.BreakMinutes = minutes
		}
	}

	if v := os.Getenv("DEEPWORK_NUDGE_ENABLED"); v != "" {
		if val, err := strconv.ParseBool(v); err == nil {
			cfg.Session.NudgeEnabled = val
		}
	}

	if v := os.Getenv("DEEPWORK_NUDGE_TYPE"); v != "" && contains(validNudgeTypes, v) {
		cfg.Session.NudgeType = v
	}

	// Classifier configuration
	if v := os.Getenv("DEEPWORK_CLASSIFIER_URL"); v != "" {
		cfg.Classifier.URL = v
	}

	if v := os.Getenv("DEEPWORK_CLASSIFIER_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil && timeout > 0 {
			cfg.Classifier.Timeout = timeout
		}
	}

	// Capture configuration
	if v := os.Getenv("DEEPWORK_CAPTURE_SOURCE"); v != "" {
		cfg.Capture.Source = v
	}

	if v := os.Getenv("DEEPWORK_CAPTURE_DIR"); v != "" {
		cfg.Capture.Dir = v
	}

	if v := os.Getenv("DEEPWORK_CAPTURE_URL"); v != "" {
		cfg.Capture.URL = v
	}

	// Web configuration
	if webHost := os.Getenv("DEEPWORK_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("DEEPWORK_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	if pidFile := os.Getenv("DEEPWORK_PID_FILE"); pidFile != "" {
		cfg.Lock.PIDFile = pidFile
	}

	if logFile := os.Getenv("DEEPWORK_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}

	// Telemetry is enabled by naming an endpoint
	if endpoint := os.Getenv("DEEPWORK_OTEL_ENDPOINT"); endpoint != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Endpoint = endpoint
	}

	if v := os.Getenv("DEEPWORK_OTEL_INSECURE"); v != "" {
		if val, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Insecure = val
		}
	}

	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}

	if channel := os.Getenv("DISCORD_CHANNEL_ID"); channel != "" {
		cfg.Discord.ChannelID = channel
	}

	if user := os.Getenv("DEEPWORK_USER"); user != "" {
		cfg.User.Name = user
	}
}

// LoadFile overlays a YAML configuration file onto cfg
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// New creates a new Config with default values, loads a .env file from the
// working directory if present, and then applies environment variables
func New() *Config {
	cfg := Default()
	loadDotEnv(".env")
	LoadFromEnv(cfg)
	return cfg
}

// Load builds a Config from defaults, an optional YAML file, .env and the
// environment, in that order of precedence
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	loadDotEnv(".env")
	LoadFromEnv(cfg)
	return cfg, nil
}

func loadDotEnv(path string) {
	// .env never overrides variables already set in the environment
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
	}
}
