package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSpoolReadRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	key, n, err := store.Spool(context.Background(), "uploads/a.png", bytes.NewReader([]byte("abc")), 10)
	if err != nil {
		t.Fatalf("Spool: %v", err)
	}
	if n != 3 || key != "uploads/a.png" {
		t.Fatalf("Spool = (%q, %d)", key, n)
	}
	data, err := store.Read(key)
	if err != nil || string(data) != "abc" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if err := store.Remove(key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if store.Exists(key) {
		t.Fatalf("key should be gone")
	}
	if err := store.Remove(key); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
}

func TestSpoolLimitRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)
	_, _, err := store.Spool(context.Background(), "big.bin", bytes.NewReader(make([]byte, 11)), 10)
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("err = %v, want ErrLimitExceeded", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "big.bin")); !os.IsNotExist(statErr) {
		t.Fatalf("partial file should be removed, stat err = %v", statErr)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "uploads/x.png", want: "uploads/x.png"},
		{in: "/abs/x.png", want: "abs/x.png"},
		{in: `win\path.png`, want: "win/path.png"},
		{in: "../escape", wantErr: true},
		{in: " ", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
