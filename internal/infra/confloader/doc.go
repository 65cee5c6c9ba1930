// Package confloader layers configuration sources with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (TASKDECK_SECTION_KEY)
//  3. The YAML configuration file
//  4. Defaults
//
// Keys are dot-delimited ("retry.max"). Values are unmarshalled into
// structs through their koanf tags; duration strings such as "10s" decode
// into time.Duration fields.
package confloader
