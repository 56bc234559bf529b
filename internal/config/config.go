package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Session defaults applied when a run does not override them
	Session SessionConfig `yaml:"session"`

	// Classifier service configuration
	Classifier ClassifierConfig `yaml:"classifier"`

	// Frame capture configuration
	Capture CaptureConfig `yaml:"capture"`

	// Web server configuration
	Web WebConfig `yaml:"web"`

	// Single live session guard
	Lock LockConfig `yaml:"lock"`

	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Discord   DiscordConfig   `yaml:"discord"`
	User      UserConfig      `yaml:"user"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database file
}

// SessionConfig holds study session defaults
type SessionConfig struct {
	StudyMinutes       int           `yaml:"study_minutes"`
	BreakMinutes       int           `yaml:"break_minutes"`
	NudgeEnabled       bool          `yaml:"nudge_enabled"`
	NudgeType          string        `yaml:"nudge_type"`
	FocusStreakWindows int           `yaml:"focus_streak_windows"` // Focused windows before a positive nudge
	TickInterval       time.Duration `yaml:"tick_interval"`        // How often the loop checks the wall clock
}

// ClassifierConfig holds the focus classifier endpoint
type ClassifierConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // Per-frame request budget
}

// CaptureConfig selects the frame source
type CaptureConfig struct {
	Source string `yaml:"source"` // auto, dir, http or x11
	Dir    string `yaml:"dir"`
	URL    string `yaml:"url"`
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `yaml:"host"` // Host to bind web server to
	Port int    `yaml:"port"` // Port for web server
}

// LockConfig holds the live session lock file
type LockConfig struct {
	PIDFile string `yaml:"pid_file"`
}

// LogConfig holds log output configuration
type LogConfig struct {
	File string `yaml:"file"` // Empty logs to stderr
}

// TelemetryConfig holds OTLP metric export configuration
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// DiscordConfig holds the remote nudge channel
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// UserConfig identifies who owns goals and sessions
type UserConfig struct {
	Name string `yaml:"name"`
}

var (
	validNudgeTypes     = []string{"text", "text_with_sound"}
	validCaptureSources = []string{"auto", "dir", "http", "x11"}
)

const (
	minTickInterval = 50 * time.Millisecond
	maxTickInterval = time.Second
)

// Default returns a Config with sensible default values
func Default() *Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}

	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/deepwork/deepwork.db
		},
		Session: SessionConfig{
			StudyMinutes:       45,
			BreakMinutes:       15,
			NudgeEnabled:       true,
			NudgeType:          "text_with_sound",
			FocusStreakWindows: 80, // 20 minutes of focused windows
			TickInterval:       200 * time.Millisecond,
		},
		Classifier: ClassifierConfig{
			URL:     "http://127.0.0.1:5000/deepwork_focus",
			Timeout: time.Second,
		},
		Capture: CaptureConfig{
			Source: "auto",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8420,
		},
		Lock: LockConfig{
			PIDFile: fmt.Sprintf("/tmp/deepwork-%d.pid", os.Getuid()),
		},
		Telemetry: TelemetryConfig{
			Endpoint: "localhost:4317",
			Insecure: true,
		},
		User: UserConfig{
			Name: user,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate session defaults
	if c.Session.StudyMinutes < 1 {
		return fmt.Errorf("study minutes must be positive, got %d", c.Session.StudyMinutes)
	}
	if c.Session.BreakMinutes < 1 {
		return fmt.Errorf("break minutes must be positive, got %d", c.Session.BreakMinutes)
	}
	if !contains(validNudgeTypes, c.Session.NudgeType) {
		return fmt.Errorf("nudge type must be one of %v, got %q", validNudgeTypes, c.Session.NudgeType)
	}
	if c.Session.FocusStreakWindows < 1 {
		return fmt.Errorf("focus streak windows must be positive, got %d", c.Session.FocusStreakWindows)
	}
	if c.Session.TickInterval < minTickInterval || c.Session.TickInterval > maxTickInterval {
		return fmt.Errorf("tick interval (%v) must be between %v and %v",
			c.Session.TickInterval, minTickInterval, maxTickInterval)
	}

	// Validate classifier config
	if c.Classifier.URL == "" {
		return fmt.Errorf("classifier URL cannot be empty")
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("classifier timeout must be positive")
	}

	// Validate capture config
	if !contains(validCaptureSources, c.Capture.Source) {
		return fmt.Errorf("capture source must be one of %v, got %q", validCaptureSources, c.Capture.Source)
	}
	if c.Capture.Source == "dir" && c.Capture.Dir == "" {
		return fmt.Errorf("capture source dir requires a directory")
	}
	if c.Capture.Source == "http" && c.Capture.URL == "" {
		return fmt.Errorf("capture source http requires a snapshot URL")
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Lock.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry endpoint cannot be empty when telemetry is enabled")
	}

	if c.Discord.Token != "" && c.Discord.ChannelID == "" {
		return fmt.Errorf("discord channel ID is required when a discord token is set")
	}

	return nil
}

// SetStudyMinutes sets the default study segment length with validation
func (c *Config) SetStudyMinutes(minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("study minutes must be positive, got %d", minutes)
	}
	c.Session.StudyMinutes = minutes
	return nil
}

// SetBreakMinutes sets the default break length with validation
func (c *Config) SetBreakMinutes(minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("break minutes must be positive, got %d", minutes)
	}
	c.Session.BreakMinutes = minutes
	return nil
}

// SetNudgeType sets the default nudge delivery with validation
func (c *Config) SetNudgeType(nudgeType string) error {
	if !contains(validNudgeTypes, nudgeType) {
		return fmt.Errorf("nudge type must be one of %v, got %q", validNudgeTypes, nudgeType)
	}
	c.Session.NudgeType = nudgeType
	return nil
}

// SetTickInterval sets the loop interval with validation
func (c *Config) SetTickInterval(interval time.Duration) error {
	if interval < minTickInterval {
		return fmt.Errorf("tick interval cannot be less than %v", minTickInterval)
	}
	if interval > maxTickInterval {
		return fmt.Errorf("tick interval cannot be greater than %v", maxTickInterval)
	}
	c.Session.TickInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// WebAddr returns the host:port the web server binds to
func (c *Config) WebAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Session:
    Study Minutes: %d
    Break Minutes: %d
    Nudges Enabled: %v
    Nudge Type: %s
    Focus Streak Windows: %d
    Tick Interval: %v
  Classifier:
    URL: %s
    Timeout: %v
  Capture:
    Source: %s
    Dir: %s
    URL: %s
  Web:
    Host: %s
    Port: %d
  Lock:
    PID File: %s
  Log:
    File: %s
  Telemetry:
    Enabled: %v
    Endpoint: %s
  Discord:
    Enabled: %v`,
		c.Database.Path,
		c.Session.StudyMinutes,
		c.Session.BreakMinutes,
		c.Session.NudgeEnabled,
		c.Session.NudgeType,
		c.Session.FocusStreakWindows,
		c.Session.TickInterval,
		c.Classifier.URL,
		c.Classifier.Timeout,
		c.Capture.Source,
		c.Capture.Dir,
		c.Capture.URL,
		c.Web.Host,
		c.Web.Port,
		c.Lock.PIDFile,
		c.Log.File,
		c.Telemetry.Enabled,
		c.Telemetry.Endpoint,
		c.Discord.Token != "",
	)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
