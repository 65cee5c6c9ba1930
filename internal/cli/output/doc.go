// Package output renders command results as a table, JSON or YAML.
//
// Tables are built by reflection from struct fields: the json tag names
// the column, and fields tagged `table:"wide"` only appear with --wide.
// JSON and YAML print the value as is, for scripting.
package output
