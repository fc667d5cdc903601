package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/graphomotor/internal/ir"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const analysisColumns = `id, seq, user_id, task_id, session_digest, result_digest, result, validation`

// ReadTaskRecords returns every task record stored for a user.
// Ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the user has no records.
func (s *Store) ReadTaskRecords(ctx context.Context, userID string) ([]ir.CognitiveTaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, score, accuracy, response_time_ms, error_count
		FROM task_records
		WHERE user_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query task records: %w", err)
	}
	defer rows.Close()

	records := []ir.CognitiveTaskRecord{}
	for rows.Next() {
		var r ir.CognitiveTaskRecord
		if err := rows.Scan(&r.TaskID, &r.Score, &r.Accuracy, &r.ResponseTimeMs, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("scan task record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task records: %w", err)
	}
	return records, nil
}

// ReadAnalyses returns a user's analyses, optionally restricted to one task.
// An empty taskID returns analyses of every task.
// Ordered by seq ASC, id ASC COLLATE BINARY.
func (s *Store) ReadAnalyses(ctx context.Context, userID, taskID string) ([]Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE user_id = ?`
	args := []any{userID}
	if taskID != "" {
		query += ` AND task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	if err := s.attachRecords(ctx, analyses); err != nil {
		return nil, err
	}
	return analyses, nil
}

// ReadAnalysis returns one analysis by ID, or ErrNotFound.
func (s *Store) ReadAnalysis(ctx context.Context, id string) (Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Analysis{}, err
	}

	list := []Analysis{a}
	if err := s.attachRecords(ctx, list); err != nil {
		return Analysis{}, err
	}
	return list[0], nil
}

// VerifyAnalysis recomputes the digest of a stored result and compares it
// with the stored digest.
func VerifyAnalysis(a Analysis) error {
	got, err := ir.ResultDigest(a.Result)
	if err != nil {
		return err
	}
	if got != a.ResultDigest {
		return fmt.Errorf("analysis %s: result digest mismatch: stored %s, computed %s", a.ID, a.ResultDigest, got)
	}
	return nil
}

func scanAnalysis(row scanner) (Analysis, error) {
	var (
		a          Analysis
		resultJSON string
		validation sql.NullString
	)
	err := row.Scan(&a.ID, &a.Seq, &a.UserID, &a.TaskID, &a.SessionDigest, &a.ResultDigest, &resultJSON, &validation)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, err
	}
	if err != nil {
		return Analysis{}, fmt.Errorf("scan analysis: %w", err)
	}

	if a.Result, err = unmarshalResult(resultJSON); err != nil {
		return Analysis{}, fmt.Errorf("analysis %s: %w", a.ID, err)
	}
	if a.Validation, err = unmarshalValidation(validation); err != nil {
		return Analysis{}, fmt.Errorf("analysis %s: %w", a.ID, err)
	}
	return a, nil
}

// attachRecords loads the task record written with each analysis, if any.
func (s *Store) attachRecords(ctx context.Context, analyses []Analysis) error {
	for i := range analyses {
		var r ir.CognitiveTaskRecord
		err := s.db.QueryRowContext(ctx, `
			SELECT task_id, score, accuracy, response_time_ms, error_count
			FROM task_records WHERE id = ?
		`, analyses[i].ID).Scan(&r.TaskID, &r.Score, &r.Accuracy, &r.ResponseTimeMs, &r.ErrorCount)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read task record %s: %w", analyses[i].ID, err)
		}
		analyses[i].Record = &r
	}
	return nil
}
