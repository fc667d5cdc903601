package store

import (
	"context"
	"fmt"

	"github.com/roach88/graphomotor/internal/ir"
)

// WriteAnalysis persists an analysis and, when a.Record is set, its task
// record, in one transaction. The logical seq is assigned inside the
// insert. Uses ON CONFLICT(id) DO NOTHING for idempotency: rewriting an
// existing ID is a no-op and reports inserted=false.
func (s *Store) WriteAnalysis(ctx context.Context, a Analysis) (inserted bool, err error) {
	if a.ID == "" {
		return false, fmt.Errorf("write analysis: id is required")
	}
	resultJSON, err := marshalResult(a.Result)
	if err != nil {
		return false, fmt.Errorf("write analysis: %w", err)
	}
	validationJSON, err := marshalValidation(a.Validation)
	if err != nil {
		return false, fmt.Errorf("write analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write analysis: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO analyses
		(id, seq, user_id, task_id, session_digest, result_digest, tier, score,
		 weights_version, result, validation, engine_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM analyses), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		a.ID,
		a.UserID,
		a.TaskID,
		a.SessionDigest,
		a.ResultDigest,
		string(a.Result.Tier),
		a.Result.Score,
		a.Result.WeightsVersion,
		resultJSON,
		validationJSON,
		ir.Version,
	)
	if err != nil {
		return false, fmt.Errorf("write analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write analysis: rows affected: %w", err)
	}
	if n == 0 {
		// Already stored; the task record was written with it.
		return false, tx.Commit()
	}

	if a.Record != nil {
		if err := insertTaskRecord(ctx, tx, a.ID, a.UserID, *a.Record); err != nil {
			return false, fmt.Errorf("write analysis: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write analysis: commit: %w", err)
	}
	return true, nil
}

// WriteTaskRecord persists a task record that did not come from a stored
// analysis, e.g. one imported from the collecting application.
// Idempotent on id.
func (s *Store) WriteTaskRecord(ctx context.Context, id, userID string, rec ir.CognitiveTaskRecord) error {
	if id == "" {
		return fmt.Errorf("write task record: id is required")
	}
	if err := insertTaskRecord(ctx, s.db, id, userID, rec); err != nil {
		return fmt.Errorf("write task record: %w", err)
	}
	return nil
}

func insertTaskRecord(ctx context.Context, db execer, id, userID string, rec ir.CognitiveTaskRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO task_records
		(id, seq, user_id, task_id, score, accuracy, response_time_ms, error_count)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM task_records), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		userID,
		rec.TaskID,
		rec.Score,
		rec.Accuracy,
		rec.ResponseTimeMs,
		rec.ErrorCount,
	)
	return err
}
