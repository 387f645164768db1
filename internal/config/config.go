// Package config resolves file paths and loads user-tunable settings for
// focusflow.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Timer  TimerConfig  `mapstructure:"timer"`
		Server ServerConfig `mapstructure:"server"`
		Notify NotifyConfig `mapstructure:"notifications"`
	}

	// TimerConfig holds the countdown tuning knobs.
	TimerConfig struct {
		TickInterval      time.Duration `mapstructure:"tick_interval"`
		WarningLead       int           `mapstructure:"warning_lead_seconds"`
		SnoozeSeconds     int           `mapstructure:"snooze_seconds"`
		DegradationWindow int           `mapstructure:"degradation_window_seconds"`
		MaxDegradation    float64       `mapstructure:"max_degradation"`
	}

	// ServerConfig holds the bridge server settings.
	ServerConfig struct {
		Addr string `mapstructure:"addr"`
	}

	// NotifyConfig holds desktop notification settings.
	NotifyConfig struct {
		Enabled        bool          `mapstructure:"enabled"`
		AutoDismiss    time.Duration `mapstructure:"auto_dismiss"`
		IconPath       string        `mapstructure:"icon"`
		DesktopMirror  bool          `mapstructure:"desktop_mirror"`
		QuoteOverrides []string      `mapstructure:"quotes"`
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.1"

var (
	configDir      = "focusflow"
	configFileName = "config.yml"
	dbFileName     = "focusflow.db"
	logFileName    = "focusflow.log"
	dbFilePath     string
	configFilePath string
	logFilePath    string
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the config, database, and log file paths through
// XDG. A FOCUSFLOW_ENV value suffixes the file names so test and dev
// environments do not clobber real data.
func InitializePaths() {
	env := strings.TrimSpace(os.Getenv("FOCUSFLOW_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("focusflow_%s.db", env)
		logFileName = fmt.Sprintf("focusflow_%s.log", env)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// New creates a new Config with default values and applies options.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option error: %w", err)
		}
	}

	return cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem. Tests and embedded callers use this instead of the viper path.
func Default() *Config {
	return &Config{
		Timer: TimerConfig{
			TickInterval:      time.Second,
			WarningLead:       5,
			SnoozeSeconds:     60,
			DegradationWindow: 300,
			MaxDegradation:    0.85,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7323",
		},
		Notify: NotifyConfig{
			Enabled:       true,
			AutoDismiss:   10 * time.Second,
			DesktopMirror: true,
		},
	}
}
