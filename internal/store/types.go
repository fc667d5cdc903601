package store

import (
	"errors"

	"github.com/roach88/graphomotor/internal/ir"
)

// ErrNotFound is returned when a requested analysis does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrVocabularyMismatch is returned by Open for a database stamped with a
// different feature vocabulary than the running extractor.
var ErrVocabularyMismatch = errors.New("store: feature vocabulary mismatch")

// Analysis is one persisted analysis.
type Analysis struct {
	ID            string
	UserID        string
	TaskID        string
	SessionDigest string
	ResultDigest  string
	Result        ir.SessionAnalysisResult
	Validation    *ir.TaskValidationResult

	// Record is written to task_records under the analysis ID when set.
	Record *ir.CognitiveTaskRecord

	// Seq is assigned by the store on write and populated on read.
	Seq int64
}
