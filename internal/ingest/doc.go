// Package ingest decodes captured sessions into pipeline inputs.
//
// Two sources are supported:
//   - the collecting application's JSON export, one session per document
//   - reMarkable .lines pages (format versions 3 and 5)
//
// Decoding only reshapes data. Structural validation of points (finite
// coordinates, pressure range, timestamp order) is left to the capture
// normalizer so both sources are judged by the same rules.
package ingest
