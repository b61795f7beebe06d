package config

import "github.com/spf13/viper"

// Default server settings
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8000
)

// SetDefaults registers default values on a Viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.secret_token", "")

	v.SetDefault("results.dir", "results")

	v.SetDefault("pipeline.command", "python3 llm_aided_ocr.py")
	v.SetDefault("pipeline.dir", "")
	v.SetDefault("pipeline.provider", "openai")
	v.SetDefault("pipeline.model", "")

	// 0 runs every job immediately with no concurrency bound
	v.SetDefault("jobs.max_concurrent", 0)
}
