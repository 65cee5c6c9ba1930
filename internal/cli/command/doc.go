// Package command provides the taskdeck-cli command definitions.
//
//   - root.go: App, global flags, the Before/After lifecycle
//   - env.go: per-run wiring of config, logger, store, session and API client
//   - auth.go: login, register, logout and status
//   - task.go: task subcommand group
//   - config.go: config subcommand group
//
// Commands parse flags, call the API client and render results through
// the output formatters.
package command
