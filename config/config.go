// Package config loads client configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the environment-driven configuration surface. Every field has a
// default; a bare environment works against a local server.
type Config struct {
	// BaseURL of the ScaleODM server.
	BaseURL string `mapstructure:"BASE_URL"`

	// S3 credentials for authenticated buckets. Forwarded to the server only
	// when both the access key and the secret are set.
	S3AccessKey    string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey    string `mapstructure:"S3_SECRET_KEY"`
	S3SessionToken string `mapstructure:"S3_SESSION_TOKEN"`

	// S3Endpoint overrides the server-side S3 endpoint when set.
	S3Endpoint string `mapstructure:"S3_ENDPOINT"`

	S3Region string `mapstructure:"S3_REGION"`

	// RequestTimeout bounds each individual HTTP call.
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// PollInterval and PollTimeout drive the terminal-state wait loop.
	PollInterval time.Duration `mapstructure:"POLL_INTERVAL"`
	PollTimeout  time.Duration `mapstructure:"POLL_TIMEOUT"`
}

// Load reads configuration from SCALEODM_-prefixed environment variables,
// falling back to defaults suitable for a local server.
func Load() (*Config, error) {
	vp := viper.New()

	vp.SetDefault("BASE_URL", "http://localhost:31100")
	vp.SetDefault("S3_ACCESS_KEY", "")
	vp.SetDefault("S3_SECRET_KEY", "")
	vp.SetDefault("S3_SESSION_TOKEN", "")
	vp.SetDefault("S3_ENDPOINT", "")
	vp.SetDefault("S3_REGION", "us-east-1")
	vp.SetDefault("REQUEST_TIMEOUT", "30s")
	vp.SetDefault("POLL_INTERVAL", "60s")
	vp.SetDefault("POLL_TIMEOUT", "1h")

	vp.SetEnvPrefix("SCALEODM")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
