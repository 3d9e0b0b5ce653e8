package infra

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"scenerender/internal/sqlinline"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker(sqlinline.QSelectIntegrationToken)
	if err != nil {
		t.Fatalf("extractMarker: %v", err)
	}
	if marker != "3c1f7e2a-5b9d-4e60-a8c4-1d2e7f905b31" {
		t.Fatalf("marker = %q", marker)
	}
	if body == "" {
		t.Fatal("expected query body")
	}

	if _, _, err := extractMarker("select 1;"); err == nil {
		t.Fatal("expected error for missing marker")
	}
}

func TestInlineQueriesCarryMarkers(t *testing.T) {
	queries := map[string]string{
		"QSelectIntegrationToken": sqlinline.QSelectIntegrationToken,
		"QUpsertIntegrationToken": sqlinline.QUpsertIntegrationToken,
		"QInsertGeneration":       sqlinline.QInsertGeneration,
		"QListRecentGenerations":  sqlinline.QListRecentGenerations,
		"QEnsureSchema":           sqlinline.QEnsureSchema,
	}
	seen := make(map[string]string)
	for name, q := range queries {
		marker, _, err := extractMarker(q)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if other, dup := seen[marker]; dup {
			t.Fatalf("%s reuses marker of %s", name, other)
		}
		seen[marker] = name
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)) {
		t.Fatal("wrapped ErrNoRows not detected")
	}
	if IsNoRows(fmt.Errorf("other")) {
		t.Fatal("unexpected match")
	}
}
