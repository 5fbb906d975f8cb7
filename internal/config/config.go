// Package config loads the facility configuration: an optional
// parkgate.yaml, PARKGATE_* environment overrides, and hardcoded
// defaults for every tunable.  Invalid values fall back to their
// defaults rather than failing startup — the facility constants are
// safe to run with.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string
	DBPath   string

	// Serial device paths; empty means autodetect, "none" disables the
	// device (no-hardware mode).
	EntryPort   string
	ExitPort    string
	PaymentPort string
	BaudRate    int

	// Plate consensus.
	PlateMarker        string
	ConsensusThreshold int

	// Capture zone, centimeters.
	MinDistance float64
	MaxDistance float64

	// Lane timing.
	EntryCooldown time.Duration
	ExitCooldown  time.Duration
	AlertCooldown time.Duration
	GateOpenTime  time.Duration
	AlarmDuration time.Duration

	// Billing and payment protocol.
	RatePerMinute int64
	ReadyTimeout  time.Duration
	DoneTimeout   time.Duration
}

// Load reads configuration with precedence env > file > defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_path", "./data/parkgate.db")

	v.SetDefault("entry_port", "")
	v.SetDefault("exit_port", "")
	v.SetDefault("payment_port", "")
	v.SetDefault("baud_rate", 9600)

	v.SetDefault("plate_marker", "RA")
	v.SetDefault("consensus_threshold", 3)

	v.SetDefault("min_distance_cm", 0.0)
	v.SetDefault("max_distance_cm", 50.0)

	v.SetDefault("entry_cooldown", "300s")
	v.SetDefault("exit_cooldown", "300s")
	v.SetDefault("alert_cooldown", "30s")
	v.SetDefault("gate_open_time", "15s")
	v.SetDefault("alarm_duration", "10s")

	v.SetDefault("rate_per_minute", 5)
	v.SetDefault("ready_timeout", "5s")
	v.SetDefault("done_timeout", "10s")

	v.SetConfigName("parkgate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/parkgate")

	v.SetEnvPrefix("PARKGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	cfg := Config{
		HTTPAddr: v.GetString("http_addr"),
		DBPath:   v.GetString("db_path"),

		EntryPort:   v.GetString("entry_port"),
		ExitPort:    v.GetString("exit_port"),
		PaymentPort: v.GetString("payment_port"),
		BaudRate:    v.GetInt("baud_rate"),

		PlateMarker:        strings.ToUpper(strings.TrimSpace(v.GetString("plate_marker"))),
		ConsensusThreshold: v.GetInt("consensus_threshold"),

		MinDistance: v.GetFloat64("min_distance_cm"),
		MaxDistance: v.GetFloat64("max_distance_cm"),

		EntryCooldown: v.GetDuration("entry_cooldown"),
		ExitCooldown:  v.GetDuration("exit_cooldown"),
		AlertCooldown: v.GetDuration("alert_cooldown"),
		GateOpenTime:  v.GetDuration("gate_open_time"),
		AlarmDuration: v.GetDuration("alarm_duration"),

		RatePerMinute: v.GetInt64("rate_per_minute"),
		ReadyTimeout:  v.GetDuration("ready_timeout"),
		DoneTimeout:   v.GetDuration("done_timeout"),
	}

	cfg.clamp()
	return cfg, nil
}

// clamp replaces out-of-range values with their defaults.
func (c *Config) clamp() {
	if c.PlateMarker == "" {
		c.PlateMarker = "RA"
	}
	if c.ConsensusThreshold <= 0 {
		c.ConsensusThreshold = 3
	}
	if c.MaxDistance <= c.MinDistance {
		c.MinDistance, c.MaxDistance = 0, 50
	}
	if c.EntryCooldown <= 0 {
		c.EntryCooldown = 300 * time.Second
	}
	if c.ExitCooldown <= 0 {
		c.ExitCooldown = 300 * time.Second
	}
	if c.AlertCooldown <= 0 {
		c.AlertCooldown = 30 * time.Second
	}
	if c.GateOpenTime <= 0 {
		c.GateOpenTime = 15 * time.Second
	}
	if c.AlarmDuration <= 0 {
		c.AlarmDuration = 10 * time.Second
	}
	if c.RatePerMinute <= 0 {
		c.RatePerMinute = 5
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 5 * time.Second
	}
	if c.DoneTimeout <= 0 {
		c.DoneTimeout = 10 * time.Second
	}
	if c.BaudRate <= 0 {
		c.BaudRate = 9600
	}
}
