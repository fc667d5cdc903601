// Package reference loads task reference tables from YAML.
//
// A table maps task identifiers to the expected pattern for each task.
// Loading is strict: the document must decode without unknown fields,
// satisfy the embedded CUE schema and pass validator.Table.Check. A
// built-in table covering the standard task set is embedded.
package reference
