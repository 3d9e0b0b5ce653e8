// Package ingest turns an uploaded furniture photo into request-scoped bytes.
//
// Every accepted image is spooled into a scratch FileStore first. The
// returned Upload owns that artifact and Release must be called on every
// exit path.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scenerender/internal/domain"
	"scenerender/internal/storage"
)

// DefaultMaxBytes is the largest accepted image.
const DefaultMaxBytes int64 = 10 << 20

const (
	fieldStyle    = "style"
	fieldImage    = "image"
	maxFieldBytes = 1 << 10
	// multipart framing and small fields on top of the image itself
	bodyOverhead = 1 << 20
)

// Upload is an accepted image plus the form fields that travelled with it.
type Upload struct {
	Style    string
	Data     []byte
	MIMEType string
	Filename string

	key     string
	store   *storage.FileStore
	once    sync.Once
	release error
}

// Key returns the scratch storage key backing the upload.
func (u *Upload) Key() string {
	if u == nil {
		return ""
	}
	return u.key
}

// Release removes the scratch artifact. It is safe to call more than once.
func (u *Upload) Release() error {
	if u == nil {
		return nil
	}
	u.once.Do(func() {
		if u.store != nil && u.key != "" {
			u.release = u.store.Remove(u.key)
		}
		u.Data = nil
	})
	return u.release
}

// Request converts the upload into a generation request.
func (u *Upload) Request(locale, requestID string) domain.GenerationRequest {
	return domain.GenerationRequest{
		StyleKey:  u.Style,
		Image:     u.Data,
		MIMEType:  u.MIMEType,
		Filename:  u.Filename,
		Locale:    locale,
		RequestID: requestID,
	}
}

// Ingestor validates uploads and manages their scratch artifacts.
type Ingestor struct {
	store    *storage.FileStore
	maxBytes int64
	logger   zerolog.Logger
}

// NewIngestor wires an ingestor on top of store. maxBytes <= 0 selects DefaultMaxBytes.
func NewIngestor(store *storage.FileStore, maxBytes int64, logger zerolog.Logger) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Ingestor{store: store, maxBytes: maxBytes, logger: logger}
}

// MaxBytes returns the configured image size limit.
func (in *Ingestor) MaxBytes() int64 {
	return in.maxBytes
}

// FromRequest streams a multipart/form-data body with an "image" file part
// and an optional "style" field.
func (in *Ingestor) FromRequest(w http.ResponseWriter, r *http.Request) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, in.maxBytes+bodyOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domain.Invalid(fieldImage, domain.ErrMissingImage)
	}

	var (
		style  string
		upload *Upload
	)
	fail := func(err error) (*Upload, error) {
		if upload != nil {
			if relErr := upload.Release(); relErr != nil {
				in.logger.Warn().Err(relErr).Str("key", upload.key).Msg("ingest: release after failure")
			}
		}
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(in.classifyReadErr(err))
		}
		switch part.FormName() {
		case fieldStyle:
			raw, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				part.Close()
				return fail(in.classifyReadErr(err))
			}
			style = strings.TrimSpace(string(raw))
		case fieldImage:
			if upload != nil {
				// only the first image part is used
				_, _ = io.Copy(io.Discard, part)
				break
			}
			upload, err = in.spool(r.Context(), part, part.FileName(), part.Header.Get("Content-Type"))
			if err != nil {
				part.Close()
				return fail(err)
			}
		default:
			_, _ = io.Copy(io.Discard, part)
		}
		part.Close()
	}

	if upload == nil {
		return nil, domain.Invalid(fieldImage, domain.ErrMissingImage)
	}
	upload.Style = style
	return upload, nil
}

// FromFile ingests an image from the local filesystem.
func (in *Ingestor) FromFile(ctx context.Context, path, style string) (*Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.Invalid(fieldImage, domain.ErrMissingImage)
		}
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	upload, err := in.spool(ctx, f, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	upload.Style = strings.TrimSpace(style)
	return upload, nil
}

func (in *Ingestor) spool(ctx context.Context, r io.Reader, filename, declared string) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ext[:10]
	}
	key := "uploads/" + uuid.NewString() + ext
	key, n, err := in.store.Spool(ctx, key, r, in.maxBytes)
	if err != nil {
		return nil, in.classifyReadErr(err)
	}
	upload := &Upload{Filename: filename, key: key, store: in.store}
	if n == 0 {
		_ = upload.Release()
		return nil, domain.Invalid(fieldImage, domain.ErrMissingImage)
	}
	data, err := in.store.Read(key)
	if err != nil {
		_ = upload.Release()
		return nil, fmt.Errorf("ingest: read artifact: %w", err)
	}
	mimeType, ok := resolveMIME(declared, data)
	if !ok {
		_ = upload.Release()
		return nil, domain.Invalid(fieldImage, domain.ErrUnsupportedMedia)
	}
	upload.Data = data
	upload.MIMEType = mimeType
	in.logger.Debug().Str("key", key).Int64("bytes", n).Str("mime", mimeType).Msg("ingest: spooled upload")
	return upload, nil
}

func (in *Ingestor) classifyReadErr(err error) error {
	var maxErr *http.MaxBytesError
	if errors.Is(err, storage.ErrLimitExceeded) || errors.As(err, &maxErr) {
		return domain.Invalid(fieldImage, domain.ErrImageTooLarge)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "storage:") {
		return fmt.Errorf("ingest: %w", err)
	}
	return domain.Invalid("body", fmt.Errorf("malformed multipart body: %w", err))
}

// resolveMIME returns the image media type for an upload. A concrete declared
// type wins; otherwise the content is sniffed.
func resolveMIME(declared string, data []byte) (string, bool) {
	declared = strings.TrimSpace(declared)
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			mt = strings.ToLower(mt)
			return mt, strings.HasPrefix(mt, "image/")
		}
	}
	detected := mimetype.Detect(data).String()
	if idx := strings.IndexByte(detected, ';'); idx >= 0 {
		detected = detected[:idx]
	}
	detected = strings.TrimSpace(detected)
	return detected, strings.HasPrefix(detected, "image/")
}
