package app

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // directories scanned for agent manifests
	ListenAddr    string   // HTTP API address; empty disables the server
	Watch         bool     // rescan manifests on file changes

	LogFormat string
	LogLevel  string
}

// NewConfig validates and normalizes a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
