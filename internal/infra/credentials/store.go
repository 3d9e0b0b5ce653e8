package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"scenerender/internal/infra"
	"scenerender/internal/sqlinline"
)

const (
	ProviderOpenAI    = "openai"
	ProviderReplicate = "replicate"
)

// ErrUnknownProvider is returned for provider names the store does not manage.
var ErrUnknownProvider = errors.New("credentials: unknown provider")

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored secret for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// Set persists token for provider, replacing any previous value.
func (s *Store) Set(ctx context.Context, provider, token string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	switch provider {
	case ProviderOpenAI, ProviderReplicate:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%s token is required", provider)
	}
	return s.upsert(ctx, provider, token, map[string]any{"source": "scenectl"})
}

// Resolve prefers the configured value and falls back to the stored token.
// A nil store only returns the configured value.
func Resolve(ctx context.Context, store *Store, provider, configured string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	if store == nil {
		return "", nil
	}
	return store.Token(ctx, provider)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
