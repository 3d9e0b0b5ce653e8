package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"scenerender/internal/domain"
	"scenerender/internal/infra"
	"scenerender/internal/sqlinline"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewGenerationRepository creates a history repository backed by PostgreSQL.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql}
}

// Create inserts a render attempt. Missing id and timestamp are filled in.
func (r *GenerationRepositoryPG) Create(ctx context.Context, rec *domain.GenerationRecord) error {
	if rec == nil {
		return errors.New("generation record is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		rec.ID,
		rec.RequestID,
		rec.StyleKey,
		rec.Provider,
		rec.Model,
		string(rec.Status),
		rec.ImageURL,
		rec.ErrorMessage,
		rec.DurationMS,
		rec.CreatedAt,
	)
	return err
}

// ListRecent returns the newest attempts first. limit is clamped to [1, 100].
func (r *GenerationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentGenerations, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.GenerationRecord, 0)
	for rows.Next() {
		var rec domain.GenerationRecord
		var status string
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.StyleKey,
			&rec.Provider,
			&rec.Model,
			&status,
			&rec.ImageURL,
			&rec.ErrorMessage,
			&rec.DurationMS,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Status = domain.RecordStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ClampLimit normalizes a caller supplied page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
