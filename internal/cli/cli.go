package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/agentgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	ManifestPaths []string `yaml:"manifest_paths"`
	Listen        string   `yaml:"listen"`
	Watch         *bool    `yaml:"watch"`
	LogFormat     string   `yaml:"log_format"`
	LogLevel      string   `yaml:"log_level"`
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("agentgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
AgentGrid - agent plugin discovery and hosting service.

Usage:
  agentgrid [options] [MANIFEST_PATH...]

Arguments:
  MANIFEST_PATH
    Directories containing .hcl agent manifests, in addition to -manifests.

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestsFlag := flagSet.String("manifests", "", "Comma-separated list of manifest directories.")
	configFlag := flagSet.String("config", "", "Path to a YAML config file.")
	listenFlag := flagSet.String("listen", "", "Address for the agent API server, e.g. ':8080'. Empty disables it.")
	watchFlag := flagSet.Bool("watch", false, "Rescan manifest directories when files change.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := app.Config{
		ListenAddr: *listenFlag,
		Watch:      *watchFlag,
		LogFormat:  strings.ToLower(*logFormatFlag),
		LogLevel:   strings.ToLower(*logLevelFlag),
	}

	// Flags and positional arguments override the config file, so load it
	// first and only fill in what the command line left unset.
	if *configFlag != "" {
		fc, err := loadConfigFile(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg.ManifestPaths = append(cfg.ManifestPaths, fc.ManifestPaths...)
		if cfg.ListenAddr == "" {
			cfg.ListenAddr = fc.Listen
		}
		if !cfg.Watch && fc.Watch != nil {
			cfg.Watch = *fc.Watch
		}
		if *logFormatFlag == "text" && fc.LogFormat != "" {
			cfg.LogFormat = strings.ToLower(fc.LogFormat)
		}
		if *logLevelFlag == "info" && fc.LogLevel != "" {
			cfg.LogLevel = strings.ToLower(fc.LogLevel)
		}
	}

	if *manifestsFlag != "" {
		for _, p := range strings.Split(*manifestsFlag, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.ManifestPaths = append(cfg.ManifestPaths, p)
			}
		}
	}
	cfg.ManifestPaths = append(cfg.ManifestPaths, flagSet.Args()...)

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}
