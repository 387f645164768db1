package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyTickInterval      = "timer.tick_interval"
	keyWarningLead       = "timer.warning_lead_seconds"
	keySnoozeSeconds     = "timer.snooze_seconds"
	keyDegradationWindow = "timer.degradation_window_seconds"
	keyMaxDegradation    = "timer.max_degradation"
	keyServerAddr        = "server.addr"
	keyNotifyEnabled     = "notifications.enabled"
	keyNotifyDismiss     = "notifications.auto_dismiss"
	keyNotifyIcon        = "notifications.icon"
	keyDesktopMirror     = "notifications.desktop_mirror"
	keyQuotes            = "notifications.quotes"
)

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing a default file first if none exists.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setViperDefaults(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return fmt.Errorf("writing default config failed: %w", err)
		}

		return loadViperConfig(v, c)
	}
}

func setViperDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault(keyTickInterval, def.Timer.TickInterval.String())
	v.SetDefault(keyWarningLead, def.Timer.WarningLead)
	v.SetDefault(keySnoozeSeconds, def.Timer.SnoozeSeconds)
	v.SetDefault(keyDegradationWindow, def.Timer.DegradationWindow)
	v.SetDefault(keyMaxDegradation, def.Timer.MaxDegradation)
	v.SetDefault(keyServerAddr, def.Server.Addr)
	v.SetDefault(keyNotifyEnabled, def.Notify.Enabled)
	v.SetDefault(keyNotifyDismiss, def.Notify.AutoDismiss.String())
	v.SetDefault(keyNotifyIcon, "")
	v.SetDefault(keyDesktopMirror, def.Notify.DesktopMirror)
	v.SetDefault(keyQuotes, []string{})
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("config unmarshal failed: %w", err)
	}

	// Durations arrive as strings from YAML.
	c.Timer.TickInterval = parseDurationKey(
		v.GetString(keyTickInterval),
		time.Second,
	)
	c.Notify.AutoDismiss = parseDurationKey(
		v.GetString(keyNotifyDismiss),
		10*time.Second,
	)

	return nil
}

func parseDurationKey(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
}
