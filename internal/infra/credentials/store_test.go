package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"scenerender/internal/sqlinline"
)

type stubExecutor struct {
	token   string
	err     error
	queried []any
	exec    struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queried = args
	return stubRow{token: s.token, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestToken(t *testing.T) {
	exec := &stubExecutor{token: " sk-test "}
	store := NewStore(exec)
	key, err := store.Token(context.Background(), ProviderOpenAI)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if key != "sk-test" {
		t.Fatalf("expected sk-test, got %q", key)
	}
	if len(exec.queried) != 1 || exec.queried[0] != ProviderOpenAI {
		t.Fatalf("expected provider argument openai, got %v", exec.queried)
	}
}

func TestToken_NoRows(t *testing.T) {
	store := NewStore(&stubExecutor{err: pgx.ErrNoRows})
	key, err := store.Token(context.Background(), ProviderReplicate)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestTokenPropagatesErrors(t *testing.T) {
	boom := errors.New("connection refused")
	store := NewStore(&stubExecutor{err: boom})
	if _, err := store.Token(context.Background(), ProviderOpenAI); !errors.Is(err, boom) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestSet(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.Set(context.Background(), " Replicate ", " r8_secret "); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if len(exec.exec.args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[0].(string); !ok || v != ProviderReplicate {
		t.Fatalf("expected replicate provider, got %T %v", exec.exec.args[0], exec.exec.args[0])
	}
	if v, ok := exec.exec.args[1].(string); !ok || v != "r8_secret" {
		t.Fatalf("expected secret argument, got %T %v", exec.exec.args[1], exec.exec.args[1])
	}
}

func TestQueriesScopedToSceneProviders(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.Set(context.Background(), ProviderOpenAI, "sk"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	for name, q := range map[string]string{"upsert": exec.exec.query, "select": sqlinline.QSelectIntegrationToken} {
		if !strings.Contains(q, "provider in ('openai', 'replicate')") {
			t.Fatalf("%s query is not limited to scene providers:\n%s", name, q)
		}
	}
}

func TestSetRejectsEmptyAndUnknown(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.Set(context.Background(), ProviderOpenAI, " "); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := store.Set(context.Background(), "gemini", "x"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	exec := &stubExecutor{token: "from-db"}
	store := NewStore(exec)

	if v, _ := Resolve(ctx, store, ProviderOpenAI, " from-env "); v != "from-env" {
		t.Fatalf("expected configured value, got %q", v)
	}
	if exec.queried != nil {
		t.Fatal("store must not be queried when a value is configured")
	}
	if v, _ := Resolve(ctx, store, ProviderOpenAI, ""); v != "from-db" {
		t.Fatalf("expected stored value, got %q", v)
	}
	if v, err := Resolve(ctx, nil, ProviderOpenAI, ""); v != "" || err != nil {
		t.Fatalf("expected empty value without store, got %q %v", v, err)
	}
}
