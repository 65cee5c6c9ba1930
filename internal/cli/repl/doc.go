// Package repl provides the interactive shell for taskdeck-cli.
//
//   - repl.go: read-eval-print loop and built-in commands
//   - completer.go: command prefix completion used by "help"
//   - history.go: command history persistence
//
// Lines are split with shell quoting rules, so
//
//	task create --title "Write report"
//
// passes the title as one argument.
package repl
