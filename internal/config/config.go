// Package config resolves s3up settings from flags, environment and defaults.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/3leaps/s3up/pkg/provider/s3"
)

// Setting keys. Flags bind to the same keys.
const (
	KeyBucket      = "bucket"
	KeyRegion      = "region"
	KeyEndpoint    = "endpoint"
	KeyProfile     = "profile"
	KeyLogLevel    = "log_level"
	KeyConcurrency = "concurrency"
	KeyNoProgress  = "no_progress"
)

// DefaultConcurrency is the number of parts transferred in parallel.
const DefaultConcurrency = 5

// Config is the resolved runtime configuration.
type Config struct {
	Bucket      string
	Region      string
	Endpoint    string
	Profile     string
	LogLevel    string
	Concurrency int
	NoProgress  bool
}

var envBindings = map[string][]string{
	KeyBucket:      {"AWS_S3_BUCKET"},
	KeyRegion:      {"AWS_REGION"},
	KeyEndpoint:    {"S3UP_ENDPOINT"},
	KeyProfile:     {"S3UP_PROFILE"},
	KeyLogLevel:    {"S3UP_LOG_LEVEL"},
	KeyConcurrency: {"S3UP_CONCURRENCY"},
	KeyNoProgress:  {"S3UP_NO_PROGRESS"},
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRegion, s3.DefaultAWSRegion)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyConcurrency, DefaultConcurrency)
	v.SetDefault(KeyNoProgress, false)

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// Load reads the resolved settings out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Bucket:      v.GetString(KeyBucket),
		Region:      v.GetString(KeyRegion),
		Endpoint:    v.GetString(KeyEndpoint),
		Profile:     v.GetString(KeyProfile),
		LogLevel:    v.GetString(KeyLogLevel),
		Concurrency: v.GetInt(KeyConcurrency),
		NoProgress:  v.GetBool(KeyNoProgress),
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("config: %s must be >= 1, got %d", KeyConcurrency, cfg.Concurrency)
	}
	return cfg, nil
}

// S3 maps the settings onto a provider config. A custom endpoint
// implies path-style addressing.
func (c *Config) S3() s3.Config {
	return s3.Config{
		Region:         c.Region,
		Endpoint:       c.Endpoint,
		Profile:        c.Profile,
		ForcePathStyle: c.Endpoint != "",
		Concurrency:    c.Concurrency,
	}
}
