// Package cli parses command-line arguments and the optional YAML config
// file into an app.Config. Flags always win over file values.
package cli
