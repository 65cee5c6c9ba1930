// Package config provides the taskdeck-cli configuration.
//
//   - spec.go: CLIConfig struct and defaults (~/.taskdeck/cli.yaml)
//   - loader.go: loading, validation and saving
//
// Values are layered through confloader: built-in defaults, the YAML file,
// TASKDECK_* environment variables, then command-line overrides.
package config
