package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/webboty/llm-aided-ocr/errors"
)

const configName = "llm-aided-ocr"

// Load reads the service configuration using Viper.
// Missing config files are fine; defaults and environment overrides apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+configName))
	}

	SetDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// bindEnv maps deployment environment variables onto config keys
func bindEnv(v *viper.Viper) {
	v.BindEnv("server.secret_token", "API_SECRET_TOKEN")
	v.BindEnv("server.host", "API_HOST")
	v.BindEnv("server.port", "API_PORT")
	v.BindEnv("results.dir", "RESULTS_DIR")
	v.BindEnv("pipeline.command", "OCR_PIPELINE_COMMAND")
	v.BindEnv("pipeline.dir", "OCR_PIPELINE_DIR")
	v.BindEnv("pipeline.provider", "API_PROVIDER")
	v.BindEnv("pipeline.model", "LM_STUDIO_MODEL")
	v.BindEnv("jobs.max_concurrent", "OCR_MAX_CONCURRENT_JOBS")
}
