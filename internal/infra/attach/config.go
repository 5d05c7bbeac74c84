package attach

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig selects and configures the attachment backend from the process
// environment.
type EnvConfig struct {
	Driver Driver `env:"FLOWCORE_ATTACH_DRIVER" envDefault:"fs"`
	Root   string `env:"FLOWCORE_ATTACH_ROOT" envDefault:"./attachdata"`

	S3Bucket          string `env:"FLOWCORE_ATTACH_S3_BUCKET"`
	S3Region          string `env:"FLOWCORE_ATTACH_S3_REGION"`
	S3Endpoint        string `env:"FLOWCORE_ATTACH_S3_ENDPOINT"`
	S3PathStyle       bool   `env:"FLOWCORE_ATTACH_S3_PATH_STYLE"`
	S3AccessKeyID     string `env:"FLOWCORE_ATTACH_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"FLOWCORE_ATTACH_S3_SECRET_ACCESS_KEY"`
	S3SessionToken    string `env:"FLOWCORE_ATTACH_S3_SESSION_TOKEN"`
}

// LoadEnvConfig parses the attachment configuration from environment
// variables.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse attachment config: %w", err)
	}
	return cfg, nil
}

