// Package config loads and validates the process configuration for the
// TDMA roles. Configuration violations must fail at startup; a bad guard
// or a missing identity surfaces here, never as a silent slot collision
// on the medium.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nexuslab/tdma/tdma"
)

// DefaultRadioPath is where the nexus filesystem exposes the virtual
// radio.
const DefaultRadioPath = "~/nexus/radio"

// Duration wraps time.Duration so TOML files can say "100ms".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(parsed)

	return nil
}

// MonitorConfig configures the gateway's HTTP monitor.
type MonitorConfig struct {
	Enable bool `toml:"enable"`
	Port   int  `toml:"port"`
	Open   bool `toml:"open"`
}

// RecordingConfig configures traffic recording on the gateway.
type RecordingConfig struct {
	Enable bool   `toml:"enable"`
	Path   string `toml:"path"`
}

// Config is the full process configuration.
type Config struct {
	Radio        string   `toml:"radio"`
	SlotLength   Duration `toml:"slot_length"`
	GuardLength  Duration `toml:"guard_length"`
	TTL          Duration `toml:"ttl"`
	PollInterval Duration `toml:"poll_interval"`
	Identity     int      `toml:"identity"`
	LogLevel     string   `toml:"log_level"`

	Monitor   MonitorConfig   `toml:"monitor"`
	Recording RecordingConfig `toml:"recording"`
}

// Default returns the reference configuration.
func Default() Config {
	p := tdma.DefaultParams()

	return Config{
		Radio:        DefaultRadioPath,
		SlotLength:   Duration(p.SlotLength),
		GuardLength:  Duration(p.GuardLength),
		TTL:          Duration(p.TTL),
		PollInterval: Duration(p.PollInterval),
		LogLevel:     "info",
	}
}

// Load reads a TOML configuration file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	return cfg, nil
}

// Params converts the configuration into protocol parameters.
func (c Config) Params() tdma.Params {
	return tdma.Params{
		SlotLength:   time.Duration(c.SlotLength),
		GuardLength:  time.Duration(c.GuardLength),
		TTL:          time.Duration(c.TTL),
		PollInterval: time.Duration(c.PollInterval),
	}
}

// Validate checks the configuration for a gateway process.
func (c Config) Validate() error {
	if c.Radio == "" {
		return errors.New("config: radio path must not be empty")
	}

	return c.Params().Validate()
}

// ValidatePeripheral checks the configuration for a peripheral process.
// Identity uniqueness across peripherals cannot be checked here; it is
// the deployment's responsibility.
func (c Config) ValidatePeripheral() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Identity < 1 {
		return fmt.Errorf("config: peripheral identity must be a positive integer, got %d",
			c.Identity)
	}

	return nil
}

// RadioPath expands a leading ~ in the configured radio path.
func (c Config) RadioPath() (string, error) {
	return ExpandHome(c.Radio)
}

// ExpandHome expands a leading ~ to the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand %s: %w", path, err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
