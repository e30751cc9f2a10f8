// Package config resolves CLI settings from a YAML file, a .env file and
// JOTTER_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/internal/platform"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "JOTTER_"

// Config holds the resolved settings.
type Config struct {
	Adapter   string `yaml:"adapter"`
	Data      string `yaml:"data"`
	Key       string `yaml:"key"`
	Codec     string `yaml:"codec"`
	ReadOnly  bool   `yaml:"read_only"`
	DevSafety *bool  `yaml:"dev_safety,omitempty"`

	Remote RemoteConfig `yaml:"remote"`
	Redis  RedisConfig  `yaml:"redis"`
	S3     S3Config     `yaml:"s3"`
}

// RemoteConfig configures the refresh source.
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries uint          `yaml:"retries"`
	Limit   int           `yaml:"limit"`
	Offline bool          `yaml:"offline"`
}

// RedisConfig configures the redis adapter. The URL is Data.
type RedisConfig struct {
	Prefix string `yaml:"prefix"`
}

// S3Config configures the s3 adapter. The bucket is Data.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Adapter: platform.AdapterFS,
		Codec:   "json",
	}
}

// Source tells Load where to look.
type Source struct {
	// File is the YAML file. Required is set when the user named it explicitly.
	File     string
	Required bool
	// EnvFile is loaded into the process environment without overriding
	// variables already set. Missing files are ignored.
	EnvFile string
	// Lookup reads the environment. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load resolves defaults < YAML file < environment.
func Load(src Source) (*Config, error) {
	cfg := Default()

	if src.File != "" {
		if err := cfg.readFile(src.File, src.Required); err != nil {
			return nil, err
		}
	}

	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", src.EnvFile, err)
		}
	}

	lookup := src.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("ADAPTER", &c.Adapter)
	str("DATA", &c.Data)
	str("KEY", &c.Key)
	str("CODEC", &c.Codec)
	boolean("READ_ONLY", &c.ReadOnly)
	if v, ok := lookup(EnvPrefix + "DEV_SAFETY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %sDEV_SAFETY: %w", EnvPrefix, err))
		} else {
			c.DevSafety = &b
		}
	}

	str("REMOTE_URL", &c.Remote.URL)
	boolean("OFFLINE", &c.Remote.Offline)
	if v, ok := lookup(EnvPrefix + "REMOTE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %sREMOTE_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Remote.Timeout = d
		}
	}
	if v, ok := lookup(EnvPrefix + "REMOTE_RETRIES"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %sREMOTE_RETRIES: %w", EnvPrefix, err))
		} else {
			c.Remote.Retries = uint(n)
		}
	}
	if v, ok := lookup(EnvPrefix + "REMOTE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %sREMOTE_LIMIT: %w", EnvPrefix, err))
		} else {
			c.Remote.Limit = n
		}
	}

	str("REDIS_PREFIX", &c.Redis.Prefix)

	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("S3_REGION", &c.S3.Region)
	str("S3_ACCESS_KEY_ID", &c.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey)
	str("S3_PREFIX", &c.S3.Prefix)
	boolean("S3_PATH_STYLE", &c.S3.PathStyle)

	return errors.Join(errs...)
}

// Options translates the settings into platform options.
func (c *Config) Options(logger *slog.Logger) []platform.Option {
	opts := []platform.Option{
		platform.WithAdapter(c.Adapter),
		platform.WithCodec(c.Codec),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithOffline(c.Remote.Offline),
		platform.WithRemoteURL(c.Remote.URL),
		platform.WithRemoteTimeout(c.Remote.Timeout),
		platform.WithRemoteRetries(c.Remote.Retries),
		platform.WithRedisPrefix(c.Redis.Prefix),
		platform.WithS3(platform.S3Config{
			Endpoint:        c.S3.Endpoint,
			Region:          c.S3.Region,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Prefix:          c.S3.Prefix,
			UsePathStyle:    c.S3.PathStyle,
		}),
	}
	if logger != nil {
		opts = append(opts, platform.WithLogger(logger))
	}
	if c.Key != "" {
		opts = append(opts, platform.WithStorageKey(c.Key))
	}
	if c.Remote.Limit > 0 {
		opts = append(opts, platform.WithRemoteLimit(c.Remote.Limit))
	}
	if c.DevSafety != nil {
		opts = append(opts, platform.WithDevSafety(*c.DevSafety))
	}
	return opts
}
