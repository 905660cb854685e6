// Package config loads the device configuration: pin assignments, LCD grid,
// timing and journal location. Every field has a default taken from the
// reference wiring, so the config file is optional.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Platform names.
const (
	PlatformGPIO     = "gpio"
	PlatformTerminal = "terminal"
)

// Config holds everything the controller and the device layer need at startup.
type Config struct {
	LogLevel     string        `mapstructure:"log_level"`
	Platform     string        `mapstructure:"platform"`
	Tick         time.Duration `mapstructure:"tick"`
	PollInterval time.Duration `mapstructure:"poll_interval"`

	Display DisplayConfig `mapstructure:"display"`
	Keypad  KeypadConfig  `mapstructure:"keypad"`
	Door    DoorConfig    `mapstructure:"door"`
	Servo   ServoConfig   `mapstructure:"servo"`
	Journal JournalConfig `mapstructure:"journal"`
}

type DisplayConfig struct {
	Rows    int    `mapstructure:"rows"`
	Cols    int    `mapstructure:"cols"`
	I2CBus  string `mapstructure:"i2c_bus"`  // "" picks the first bus
	I2CAddr uint16 `mapstructure:"i2c_addr"` // PCF8574 backpack, usually 0x27
}

// KeypadConfig lists matrix pins by periph name. Three columns select the
// 4x3 layout, four columns the 4x4 layout with A-D.
type KeypadConfig struct {
	Rows []string `mapstructure:"rows"`
	Cols []string `mapstructure:"cols"`
}

type DoorConfig struct {
	Pin         string `mapstructure:"pin"`
	ClosedLevel string `mapstructure:"closed_level"` // "low" | "high"
}

// ServoConfig holds pulse widths in microseconds for each lock position.
type ServoConfig struct {
	Pin      string `mapstructure:"pin"`
	OpenUS   int    `mapstructure:"open_us"`
	MidUS    int    `mapstructure:"mid_us"`
	LockedUS int    `mapstructure:"locked_us"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

const envPrefix = "PHONEBOX"

var (
	errBadPlatform = errors.New("platform must be gpio or terminal")
	errBadGrid     = errors.New("display rows and cols must be positive")
	errBadTiming   = errors.New("tick and poll_interval must be positive")
)

// Default returns the reference wiring: 2x16 LCD at 0x27, 4x3 keypad, door
// switch pulling low when closed, servo on the hardware PWM pin.
func Default() Config {
	return Config{
		LogLevel:     "info",
		Platform:     PlatformTerminal,
		Tick:         time.Second,
		PollInterval: 50 * time.Millisecond,
		Display: DisplayConfig{
			Rows:    2,
			Cols:    16,
			I2CAddr: 0x27,
		},
		Keypad: KeypadConfig{
			Rows: []string{"GPIO4", "GPIO14", "GPIO15", "GPIO17"},
			Cols: []string{"GPIO18", "GPIO27", "GPIO22"},
		},
		Door: DoorConfig{
			Pin:         "GPIO5",
			ClosedLevel: "low",
		},
		Servo: ServoConfig{
			Pin:      "GPIO12",
			OpenUS:   2000,
			MidUS:    1500,
			LockedUS: 1000,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "phonebox.db",
		},
	}
}

// Load reads configs/config.yml (if present) from the given search paths,
// applies PHONEBOX_* env overrides and validates the result.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("platform", d.Platform)
	v.SetDefault("tick", d.Tick)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("display.rows", d.Display.Rows)
	v.SetDefault("display.cols", d.Display.Cols)
	v.SetDefault("display.i2c_bus", d.Display.I2CBus)
	v.SetDefault("display.i2c_addr", d.Display.I2CAddr)
	v.SetDefault("keypad.rows", d.Keypad.Rows)
	v.SetDefault("keypad.cols", d.Keypad.Cols)
	v.SetDefault("door.pin", d.Door.Pin)
	v.SetDefault("door.closed_level", d.Door.ClosedLevel)
	v.SetDefault("servo.pin", d.Servo.Pin)
	v.SetDefault("servo.open_us", d.Servo.OpenUS)
	v.SetDefault("servo.mid_us", d.Servo.MidUS)
	v.SetDefault("servo.locked_us", d.Servo.LockedUS)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)
}

// Validate rejects values the controller cannot run with.
func (c Config) Validate() error {
	switch c.Platform {
	case PlatformGPIO, PlatformTerminal:
	default:
		return fmt.Errorf("%w: got %q", errBadPlatform, c.Platform)
	}
	if c.Display.Rows <= 0 || c.Display.Cols <= 0 {
		return errBadGrid
	}
	if c.Tick <= 0 || c.PollInterval <= 0 {
		return errBadTiming
	}
	if c.Platform == PlatformGPIO {
		if len(c.Keypad.Rows) != 4 || (len(c.Keypad.Cols) != 3 && len(c.Keypad.Cols) != 4) {
			return fmt.Errorf("keypad must be 4x3 or 4x4, got %dx%d", len(c.Keypad.Rows), len(c.Keypad.Cols))
		}
		if c.Door.Pin == "" || c.Servo.Pin == "" {
			return errors.New("door.pin and servo.pin are required on gpio")
		}
		switch c.Door.ClosedLevel {
		case "low", "high":
		default:
			return fmt.Errorf("door.closed_level must be low or high, got %q", c.Door.ClosedLevel)
		}
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path is required when the journal is enabled")
	}
	return nil
}
