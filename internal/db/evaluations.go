package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveEvaluation stores an evaluation record
func (db *DB) SaveEvaluation(ctx context.Context, rec *EvaluationRecord) error {
	evalJSON, err := json.Marshal(rec.Evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO evaluations (id, resume_name, jd_excerpt, model, jd_match, match_fraction, evaluation, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.ResumeName, rec.JDExcerpt, rec.Model, rec.JDMatch, rec.MatchFraction, evalJSON, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// GetEvaluation retrieves an evaluation by ID; returns nil, nil when it does not exist
func (db *DB) GetEvaluation(ctx context.Context, id uuid.UUID) (*EvaluationRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, resume_name, jd_excerpt, model, jd_match, match_fraction, evaluation, duration_ms, created_at
		 FROM evaluations WHERE id = $1`,
		id,
	)
	rec, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return rec, nil
}

// ListEvaluations retrieves the most recent evaluations, newest first
func (db *DB) ListEvaluations(ctx context.Context, limit int) ([]EvaluationRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, resume_name, jd_excerpt, model, jd_match, match_fraction, evaluation, duration_ms, created_at
		 FROM evaluations ORDER BY created_at DESC LIMIT $1`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	records := []EvaluationRecord{}
	for rows.Next() {
		rec, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return records, nil
}

func scanEvaluation(row pgx.Row) (*EvaluationRecord, error) {
	var rec EvaluationRecord
	var evalJSON []byte
	if err := row.Scan(&rec.ID, &rec.ResumeName, &rec.JDExcerpt, &rec.Model, &rec.JDMatch,
		&rec.MatchFraction, &evalJSON, &rec.DurationMS, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(evalJSON, &rec.Evaluation); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}
	return &rec, nil
}
