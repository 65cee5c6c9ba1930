// Package main provides the entry point for taskdeck-cli.
//
// The CLI is a client for the task API:
//
//   - Account registration, login and logout
//   - Task listing, creation, update and deletion
//   - Local configuration management
//
// Usage:
//
//	taskdeck-cli login --username alice
//	taskdeck-cli task list -o json
//	taskdeck-cli task create --title "Write report"
//
// Expired access tokens are refreshed transparently; when the refresh
// token is rejected too, the stored session is cleared and the user is
// asked to log in again.
package main
