package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "EVENTHUB_"

// Load resolves configuration from defaults, the TOML file at path, and
// the environment, then validates the result. An empty path or a missing
// file is not an error.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with environment overrides taken from lookup.
func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromReader decodes TOML from r on top of the defaults. The
// environment is not consulted.
func LoadFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := decode("<reader>", data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return decode(path, data, cfg)
}

// decode overlays the TOML document onto cfg; keys absent from the
// document keep their current values.
func decode(source string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// EnvFileLookup returns a LookupFunc that consults the process environment
// first and then the dotenv file at path. The process environment is not
// modified.
func EnvFileLookup(path string) (LookupFunc, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

// envSetting binds one environment variable to a configuration field.
type envSetting struct {
	name  string
	apply func(cfg *Config, value string) error
}

var envSettings = []envSetting{
	{"POOL_WORKERS", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Pool.Workers = n
		return err
	}},
	{"POOL_QUEUE_SIZE", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Pool.QueueSize = n
		return err
	}},
	{"POOL_DRAIN_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.Pool.DrainTimeout = Duration(d)
		return err
	}},
	{"LOG_LEVEL", func(c *Config, v string) error {
		c.Log.Level = strings.ToLower(v)
		return nil
	}},
	{"LOG_FORMAT", func(c *Config, v string) error {
		c.Log.Format = strings.ToLower(v)
		return nil
	}},
}

// ApplyEnv overrides cfg with any EVENTHUB_* variables found by lookup.
// Empty values are treated as unset.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for _, s := range envSettings {
		name := EnvPrefix + s.name
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}

		next := *cfg
		if err := s.apply(&next, value); err != nil {
			return &EnvError{Name: name, Value: value, Err: err}
		}
		*cfg = next
	}
	return nil
}
