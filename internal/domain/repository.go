package domain

import "context"

// GenerationRepository persists the render history.
type GenerationRepository interface {
	Create(ctx context.Context, rec *GenerationRecord) error
	ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error)
}
