// Package config loads the armen daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/patkersoxton-bit/armen/pkg/arm"
)

// SerialConfig describes the operator link.
type SerialConfig struct {
	Port string `yaml:"port"` // e.g. /dev/ttyUSB0; empty = stdio loopback
	Baud int    `yaml:"baud"`
}

// ControlConfig holds the motion-loop timing parameters.
type ControlConfig struct {
	TickMs       int     `yaml:"tick_ms"`         // control loop period
	TelemetryMs  int     `yaml:"telemetry_ms"`    // telemetry emission period
	WatchdogMs   int     `yaml:"watchdog_ms"`     // liveness window before estop
	MaxDegPerSec float64 `yaml:"max_deg_per_sec"` // shared joint velocity ceiling
	DefaultSpeed float64 `yaml:"default_speed"`   // initial speed scale [0,1]
}

// ServoConfig maps joints to GPIO PWM pins.
type ServoConfig struct {
	Pins [arm.NumJoints]int `yaml:"pins"` // BCM pin numbers, channel order
	Mock bool               `yaml:"mock"` // use mock sink (dev/test machine)
}

// WebConfig holds the dashboard settings.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // e.g. ":8089"
}

// Config aggregates all daemon configuration.
type Config struct {
	Serial   SerialConfig  `yaml:"serial"`
	Control  ControlConfig `yaml:"control"`
	Servos   ServoConfig   `yaml:"servos"`
	Web      WebConfig     `yaml:"web"`
	LogLevel string        `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{Baud: 115200},
		Control: ControlConfig{
			TickMs:       20, // 50 Hz
			TelemetryMs:  500,
			WatchdogMs:   5000,
			MaxDegPerSec: 90,
			DefaultSpeed: 0.5,
		},
		Web:      WebConfig{Enabled: true, Listen: ":8089"},
		LogLevel: "info",
	}
}

// Load reads a YAML file and returns the validated configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and fills gaps with defaults.
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		c.Serial.Baud = 115200
	}
	if c.Control.TickMs <= 0 {
		c.Control.TickMs = 20
	}
	if c.Control.TickMs > 100 {
		return fmt.Errorf("control.tick_ms must be <= 100 (>= 10 Hz), got %d", c.Control.TickMs)
	}
	if c.Control.TelemetryMs <= 0 {
		c.Control.TelemetryMs = 500
	}
	if c.Control.WatchdogMs <= 0 {
		c.Control.WatchdogMs = 5000
	}
	if c.Control.WatchdogMs < c.Control.TickMs {
		return fmt.Errorf("control.watchdog_ms must be >= tick_ms, got %d", c.Control.WatchdogMs)
	}
	if c.Control.MaxDegPerSec <= 0 {
		c.Control.MaxDegPerSec = 90
	}
	if c.Control.DefaultSpeed < 0 || c.Control.DefaultSpeed > 1 {
		return fmt.Errorf("control.default_speed must be in [0,1], got %.2f", c.Control.DefaultSpeed)
	}
	if c.Control.DefaultSpeed == 0 {
		c.Control.DefaultSpeed = 0.5
	}
	if c.Web.Enabled && c.Web.Listen == "" {
		c.Web.Listen = ":8089"
	}
	return nil
}

// Tick returns the control loop period.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Control.TickMs) * time.Millisecond
}

// TelemetryPeriod returns the telemetry emission period.
func (c *Config) TelemetryPeriod() time.Duration {
	return time.Duration(c.Control.TelemetryMs) * time.Millisecond
}

// WatchdogWindow returns the liveness timeout.
func (c *Config) WatchdogWindow() time.Duration {
	return time.Duration(c.Control.WatchdogMs) * time.Millisecond
}
