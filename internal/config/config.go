package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shiftclock/internal/work"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SHIFTCLOCK_"

type Config struct {
	// Form defaults
	StartTime    string  `yaml:"StartTime" env:"START_TIME" validate:"required,datetime=15:04"`
	Mode         string  `yaml:"Mode" env:"MODE" validate:"oneof=decimal hrmin"`
	ShiftHours   float64 `yaml:"ShiftHours" env:"SHIFT_HOURS" validate:"gte=0,lte=24"`
	BreakMinutes int     `yaml:"BreakMinutes" env:"BREAK_MINUTES" validate:"gte=0,lte=1440"`

	// Countdown refresh interval in seconds
	RefreshSeconds int `yaml:"RefreshSeconds" env:"REFRESH_SECONDS" validate:"gte=1"`

	// Web widget
	Port            int    `yaml:"Port" env:"PORT" validate:"gte=1,lte=65535"`
	AssetDir        string `yaml:"AssetDir" env:"ASSET_DIR"`
	AssetBase       string `yaml:"AssetBase" env:"ASSET_BASE" validate:"required,startswith=/"`
	ShutdownTimeout int    `yaml:"ShutdownTimeout" env:"SHUTDOWN_TIMEOUT" validate:"gte=1"`

	LogLevel string `yaml:"LogLevel" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// Load reads ~/.shiftclock.yaml, or the file named by SHIFTCLOCK_CONFIG.
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom layers defaults, the YAML file at path (if any), a .env file in
// the working directory (if any) and SHIFTCLOCK_* variables, then validates.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := getDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	// Expand ~ in asset path
	if strings.HasPrefix(cfg.AssetDir, "~/") {
		home, _ := os.UserHomeDir()
		cfg.AssetDir = filepath.Join(home, cfg.AssetDir[2:])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(getConfigPath(), cfg)
}

func SaveTo(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Path returns where Load looks for the config file.
func Path() string {
	return getConfigPath()
}

func getConfigPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shiftclock.yaml")
}

func getDefaultConfig() *Config {
	return &Config{
		StartTime:       work.DefaultStartTime,
		Mode:            string(work.ModeDecimal),
		ShiftHours:      work.DefaultShiftHours,
		BreakMinutes:    work.DefaultBreakMinutes,
		RefreshSeconds:  int(work.RefreshInterval / time.Second),
		Port:            8080,
		AssetDir:        "assets",
		AssetBase:       "/assets/gifs",
		ShutdownTimeout: 10,
		LogLevel:        "info",
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return getDefaultConfig()
}

// Input returns the form prefilled from the configured defaults.
func (c *Config) Input() work.Input {
	h, m := work.DecimalToHoursMinutes(c.ShiftHours)
	return work.Input{
		StartTime:    c.StartTime,
		Mode:         work.ParseMode(c.Mode),
		ShiftHours:   work.FormatNumber(c.ShiftHours),
		ShiftH:       strconv.Itoa(h),
		ShiftM:       strconv.Itoa(m),
		BreakMinutes: strconv.Itoa(c.BreakMinutes),
	}
}

// RefreshInterval returns the countdown refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}

func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// SlogLevel maps LogLevel onto slog. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports the first offending field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: describeTag(fe)}
	}
	return err
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "datetime":
		return fmt.Sprintf("%q is not a time of day (HH:MM)", fe.Value())
	case "oneof":
		return fmt.Sprintf("%v must be one of: %s", fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
