package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type recordingUploader struct {
	input UploadInput
	body  []byte
	err   error
}

func (r *recordingUploader) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	r.input = input
	r.body, _ = io.ReadAll(input.Body)
	if r.err != nil {
		return UploadResult{}, r.err
	}
	return UploadResult{Key: "scenes/" + input.Folder + "/id.png", URL: "https://cdn.example/scenes/" + input.Folder + "/id.png"}, nil
}

func TestArchiveCopiesImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	up := &recordingUploader{}
	a := NewArchiver(ArchiverOptions{Uploader: up, HTTPClient: srv.Client(), Logger: zerolog.Nop()})
	a.now = func() time.Time { return time.Date(2026, 10, 4, 23, 30, 0, 0, time.UTC) }

	got, err := a.Archive(context.Background(), srv.URL+"/out.png", "japandi")
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	if got != "https://cdn.example/scenes/japandi/2026-10-04/id.png" {
		t.Fatalf("archived url = %q", got)
	}
	if up.input.ContentType != "image/png" || up.input.Filename != "scene.png" {
		t.Fatalf("unexpected upload input: %+v", up.input)
	}
	if up.input.Size != int64(len(pngBytes)) || string(up.body) != string(pngBytes) {
		t.Fatalf("uploaded %d bytes, want %d", len(up.body), len(pngBytes))
	}
}

func TestArchiveRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>expired</html>"))
	}))
	defer srv.Close()

	up := &recordingUploader{}
	a := NewArchiver(ArchiverOptions{Uploader: up, HTTPClient: srv.Client()})
	if _, err := a.Archive(context.Background(), srv.URL, "japandi"); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if up.body != nil {
		t.Fatal("nothing should be uploaded")
	}
}

func TestArchiveDownloadFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/big") {
			_, _ = w.Write(append(pngBytes, make([]byte, 64)...))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	a := NewArchiver(ArchiverOptions{Uploader: &recordingUploader{}, HTTPClient: srv.Client(), MaxBytes: 32})
	if _, err := a.Archive(context.Background(), srv.URL+"/gone", "japandi"); err == nil {
		t.Fatal("expected error for 403")
	}
	if _, err := a.Archive(context.Background(), srv.URL+"/big", "japandi"); err == nil {
		t.Fatal("expected error for oversized download")
	}
}

func TestArchiveDisabled(t *testing.T) {
	a := NewArchiver(ArchiverOptions{})
	if _, err := a.Archive(context.Background(), "https://x/out.png", "japandi"); !errors.Is(err, ErrUploaderDisabled) {
		t.Fatalf("expected ErrUploaderDisabled, got %v", err)
	}
}
