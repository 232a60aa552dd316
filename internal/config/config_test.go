package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shiftclock/internal/work"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shiftclock.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom(missing) error: %v", err)
	}

	if cfg.StartTime != work.DefaultStartTime {
		t.Errorf("Default StartTime = %s, want %s", cfg.StartTime, work.DefaultStartTime)
	}
	if cfg.BreakMinutes != work.DefaultBreakMinutes {
		t.Errorf("Default BreakMinutes = %d, want %d", cfg.BreakMinutes, work.DefaultBreakMinutes)
	}
	if cfg.RefreshInterval() != work.RefreshInterval {
		t.Errorf("Default RefreshInterval = %v, want %v", cfg.RefreshInterval(), work.RefreshInterval)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "StartTime: \"07:30\"\nShiftHours: 7.5\nBreakMinutes: 0\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.StartTime != "07:30" || cfg.ShiftHours != 7.5 || cfg.BreakMinutes != 0 {
		t.Errorf("LoadFrom = %+v", cfg)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want untouched default 8080", cfg.Port)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "Port: 9000\nMode: decimal\n")
	t.Setenv("SHIFTCLOCK_PORT", "9100")
	t.Setenv("SHIFTCLOCK_MODE", "hrmin")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.Mode != "hrmin" {
		t.Errorf("Mode = %s, want hrmin", cfg.Mode)
	}
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("SHIFTCLOCK_PORT", "not-a-number")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "StartTime: [unterminated\n")
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad start time", func(c *Config) { c.StartTime = "8 o'clock" }, "StartTime"},
		{"missing start time", func(c *Config) { c.StartTime = "" }, "StartTime"},
		{"bad mode", func(c *Config) { c.Mode = "weeks" }, "Mode"},
		{"negative break", func(c *Config) { c.BreakMinutes = -5 }, "BreakMinutes"},
		{"zero refresh", func(c *Config) { c.RefreshSeconds = 0 }, "RefreshSeconds"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "Port"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "LogLevel"},
		{"relative asset base", func(c *Config) { c.AssetBase = "gifs" }, "AssetBase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %s, want %s", vErr.Field, tt.field)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "RefreshSeconds: 0\n")

	_, err := LoadFrom(path)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "RefreshSeconds" {
		t.Errorf("LoadFrom = %v, want RefreshSeconds validation error", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.StartTime = "06:15"
	cfg.LogLevel = "debug"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip = %+v, want %+v", loaded, cfg)
	}
}

func TestInput(t *testing.T) {
	cfg := Default()
	cfg.ShiftHours = 7.75
	cfg.Mode = "hrmin"

	in := cfg.Input()
	if in.Mode != work.ModeHrMin || in.ShiftHours != "7.75" || in.ShiftH != "7" || in.ShiftM != "45" {
		t.Errorf("Input() = %+v", in)
	}
	if in.StartTime != work.DefaultStartTime || in.BreakMinutes != "60" {
		t.Errorf("Input() = %+v", in)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.expected {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.expected)
		}
	}
}

func TestConfigPathFromEnv(t *testing.T) {
	t.Setenv("SHIFTCLOCK_CONFIG", "/tmp/custom.yaml")
	if Path() != "/tmp/custom.yaml" {
		t.Errorf("Path() = %s, want /tmp/custom.yaml", Path())
	}
}

func TestShutdownGrace(t *testing.T) {
	if Default().ShutdownGrace() != 10*time.Second {
		t.Errorf("ShutdownGrace = %v, want 10s", Default().ShutdownGrace())
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SHIFTCLOCK_BREAK_MINUTES=45\n"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("SHIFTCLOCK_BREAK_MINUTES", "")
	os.Unsetenv("SHIFTCLOCK_BREAK_MINUTES")

	cfg, err := LoadFrom(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.BreakMinutes != 45 {
		t.Errorf("BreakMinutes = %d, want 45 from .env", cfg.BreakMinutes)
	}
}

func TestLoadMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	if _, err := LoadFrom(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFrom should fail on a malformed .env")
	}
}
