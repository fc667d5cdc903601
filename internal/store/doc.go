// Package store provides SQLite-backed persistence for analysis results
// and cognitive task records, keyed by user.
//
// The store is append-only:
//   - Analyses: one row per analysis, holding the canonical JSON result,
//     its digest and the digest of the normalized session
//   - Task records: one row per completed task, the evidence later
//     sessions aggregate with
//
// # Ordering
//
// Every row carries a logical seq assigned at insert time. All queries
// order by seq ASC, id ASC COLLATE BINARY, so reads are identical across
// runs and never depend on timestamps.
//
// # Idempotency
//
// Writes use ON CONFLICT(id) DO NOTHING. Writing the same analysis twice
// leaves the first row untouched.
//
// # Vocabulary
//
// A new database is stamped with the feature vocabulary version in
// store_meta. Opening a database stamped with another vocabulary fails
// with ErrVocabularyMismatch, because its stored feature vectors and
// scores are not comparable with new ones. OpenWith(path,
// Options{Verify: true}) additionally re-hashes every stored result.
//
// SQLite runs in WAL mode with one connection and a 5 second busy
// timeout. Migrations are tracked in user_version.
package store
