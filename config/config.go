// Package config loads the llm-aided-ocr service configuration.
//
// Configuration is read from llm-aided-ocr.toml (current directory, then
// ~/.llm-aided-ocr/) with environment variable overrides (API_SECRET_TOKEN,
// API_HOST, API_PORT, RESULTS_DIR, ...).
//
// Values loaded here are startup defaults only. Per-job provider and model
// overrides travel as explicit arguments through the pipeline invocation,
// never through this package.
package config

// Config represents the service configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Results  ResultsConfig  `mapstructure:"results"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig configures the REST API server
type ServerConfig struct {
	Host string `mapstructure:"host"` // Listen address (default: 0.0.0.0)
	Port int    `mapstructure:"port"` // Listen port (default: 8000)

	// SecretToken is the shared bearer secret. Empty means authentication is
	// bypassed entirely, leaving the API open. Flagged loudly at startup.
	SecretToken string `mapstructure:"secret_token"`
}

// ResultsConfig configures where job output trees live
type ResultsConfig struct {
	Dir string `mapstructure:"dir"` // Results root, one subdirectory per job id (default: results)
}

// PipelineConfig configures the external OCR+LLM correction pipeline
type PipelineConfig struct {
	// Command is the full command line that runs one pipeline invocation,
	// e.g. "python3 llm_aided_ocr.py". Parsed with shell quoting rules.
	Command string `mapstructure:"command"`

	// Dir is the pipeline checkout directory the command runs in.
	// Applied per invocation via exec.Cmd.Dir; the process working
	// directory is never changed.
	Dir string `mapstructure:"dir"`

	// Provider is the default LLM provider when a job does not request one
	// (openai, claude, lm-studio).
	Provider string `mapstructure:"provider"`

	// Model is the default model for the lm-studio provider.
	Model string `mapstructure:"model"`
}

// JobsConfig configures background job execution
type JobsConfig struct {
	// MaxConcurrent bounds simultaneously running pipeline invocations.
	// 0 means unbounded.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}
