package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventhub.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Pool.QueueSize != Default().Pool.QueueSize {
		t.Errorf("QueueSize = %d, want default", cfg.Pool.QueueSize)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[pool]
workers = 8
drain_timeout = "250ms"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Pool.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Pool.Workers)
	}
	if cfg.Pool.DrainTimeout.Std() != 250*time.Millisecond {
		t.Errorf("DrainTimeout = %v, want 250ms", cfg.Pool.DrainTimeout.Std())
	}
	if cfg.Pool.QueueSize != 10000 {
		t.Errorf("QueueSize = %d, want default 10000", cfg.Pool.QueueSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Format = %q, want default text", cfg.Log.Format)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "[pool\nworkers = 1\n")

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
	}
	if perr.Line == 0 {
		t.Error("expected a line number in the parse error")
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  ParseError
		want string
	}{
		{"full position", ParseError{Path: "hub.toml", Line: 3, Column: 7, Message: "bad"}, "decoding config hub.toml:3:7: bad"},
		{"line only", ParseError{Path: "hub.toml", Line: 3, Message: "bad"}, "decoding config hub.toml:3: bad"},
		{"no position", ParseError{Path: "<reader>", Message: "bad"}, "decoding config <reader>: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, "[pool]\nworkers = -1\n")

	_, err := Load(path)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Load() error = %v, want ErrValidationFailed", err)
	}
	if !strings.Contains(err.Error(), "pool.workers") {
		t.Errorf("error %q does not name the setting", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader("[log]\nformat = \"json\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader() failed: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Log.Format)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"EVENTHUB_POOL_WORKERS":       "3",
		"EVENTHUB_POOL_QUEUE_SIZE":    "64",
		"EVENTHUB_POOL_DRAIN_TIMEOUT": "1s",
		"EVENTHUB_LOG_LEVEL":          "WARN",
		"EVENTHUB_LOG_FORMAT":         "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}

	if cfg.Pool.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Pool.Workers)
	}
	if cfg.Pool.QueueSize != 64 {
		t.Errorf("QueueSize = %d, want 64", cfg.Pool.QueueSize)
	}
	if cfg.Pool.DrainTimeout.Std() != time.Second {
		t.Errorf("DrainTimeout = %v, want 1s", cfg.Pool.DrainTimeout.Std())
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Format = %q, want unchanged text", cfg.Log.Format)
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"EVENTHUB_POOL_WORKERS": "many",
	}))

	var eerr *EnvError
	if !errors.As(err, &eerr) {
		t.Fatalf("ApplyEnv() error = %v, want *EnvError", err)
	}
	if eerr.Name != "EVENTHUB_POOL_WORKERS" {
		t.Errorf("EnvError.Name = %q", eerr.Name)
	}
	if cfg.Pool.Workers != Default().Pool.Workers {
		t.Error("config modified despite parse error")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[pool]\nworkers = 8\n")
	t.Setenv("EVENTHUB_POOL_WORKERS", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Pool.Workers != 2 {
		t.Errorf("Workers = %d, want env override 2", cfg.Pool.Workers)
	}
}

func TestEnvFileLookup(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "EVENTHUB_POOL_QUEUE_SIZE=128\nEVENTHUB_LOG_FORMAT=json\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("EVENTHUB_LOG_FORMAT", "text")

	lookup, err := EnvFileLookup(envPath)
	if err != nil {
		t.Fatalf("EnvFileLookup() failed: %v", err)
	}

	cfg, err := LoadWithEnv("", lookup)
	if err != nil {
		t.Fatalf("LoadWithEnv() failed: %v", err)
	}
	if cfg.Pool.QueueSize != 128 {
		t.Errorf("QueueSize = %d, want 128 from env file", cfg.Pool.QueueSize)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Format = %q, want process env to win", cfg.Log.Format)
	}
}

func TestEnvFileLookup_Missing(t *testing.T) {
	if _, err := EnvFileLookup(filepath.Join(t.TempDir(), ".env")); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"negative workers", func(c *Config) { c.Pool.Workers = -2 }, "pool.workers"},
		{"zero queue", func(c *Config) { c.Pool.QueueSize = 0 }, "pool.queue_size"},
		{"zero drain", func(c *Config) { c.Pool.DrainTimeout = 0 }, "pool.drain_timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Errorf("ValidationError.Path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() failed: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("Std() = %v, want 1m30s", d.Std())
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected error for invalid duration")
	}

	text, _ := Duration(2 * time.Second).MarshalText()
	if string(text) != "2s" {
		t.Errorf("MarshalText() = %q, want 2s", text)
	}
}
