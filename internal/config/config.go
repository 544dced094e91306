// Package config loads CLI settings from a file and OLMOCR_ environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/minio"
)

// EnvPrefix prefixes every environment override, e.g. OLMOCR_S3_ENDPOINT.
const EnvPrefix = "OLMOCR"

// Config holds the CLI settings.
type Config struct {
	CacheDir    string     `mapstructure:"cache_dir"`
	AppName     string     `mapstructure:"app_name"`
	Concurrency int        `mapstructure:"concurrency"`
	LogLevel    string     `mapstructure:"log_level"`
	HTTP        HTTPConfig `mapstructure:"http"`
	S3          S3Config   `mapstructure:"s3"`
}

// HTTPConfig configures the http and https backends.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// S3Config configures the S3 backend. Endpoint defaults to AWS; setting it
// to an empty string disables the backend.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache_dir", "")
	v.SetDefault("app_name", "olmocr")
	v.SetDefault("concurrency", 8)
	v.SetDefault("log_level", "info")
	v.SetDefault("http.timeout", "60s")
	v.SetDefault("s3.endpoint", minio.DefaultEndpoint)
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.region", "")
}

// Load reads path, if given, applies environment overrides and validates
// the result. The file format follows the extension (yaml, toml, json).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidConfig, "cannot read config"),
				"path", path,
			)
		}
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(durationHook(), mapstructure.StringToSliceHookFunc(","))
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "cannot decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// durationHook accepts Go duration strings and plain numbers of seconds.
func durationHook() mapstructure.DecodeHookFunc {
	target := reflect.TypeOf(time.Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != target {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			if v == "" {
				return time.Duration(0), nil
			}
			if d, err := time.ParseDuration(v); err == nil {
				return d, nil
			}
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				return time.Duration(secs * float64(time.Second)), nil
			}
			return nil, fmt.Errorf("invalid duration %q", v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return invalid("concurrency", "must be at least 1")
	}
	if c.HTTP.Timeout < 0 {
		return invalid("http.timeout", "must not be negative")
	}
	if strings.TrimSpace(c.AppName) == "" {
		return invalid("app_name", "must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return invalid("s3", "access_key and secret_key must be set together")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// MinIO returns the S3 backend configuration, or nil when no endpoint is
// set.
func (c *Config) MinIO() *minio.Config {
	if c.S3.Endpoint == "" {
		return nil
	}
	return &minio.Config{
		Endpoint:  c.S3.Endpoint,
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
		UseSSL:    c.S3.UseSSL,
		Region:    c.S3.Region,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, invalid("log_level", fmt.Sprintf("unknown level %q", s))
	}
	return l, nil
}

func invalid(field, reason string) error {
	return errors.WithContext(
		errors.Newf(errors.CodeInvalidConfig, "%s: %s", field, reason),
		"field", field,
	)
}
