// Package config loads the analysis configuration: the pause threshold,
// the risk weight table and tier thresholds, and the paths used by the
// command line tool.
//
// A configuration file is YAML. It is decoded strictly (unknown fields are
// an error), validated against the embedded CUE schema, and finally checked
// semantically against the feature vocabulary. Values not present in the
// file keep their defaults; a weights section replaces the default table
// as a whole.
package config
