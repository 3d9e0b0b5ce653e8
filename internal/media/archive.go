package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// DefaultMaxArchiveBytes bounds the size of a downloaded scene image.
const DefaultMaxArchiveBytes = 25 << 20

// ErrNotImage is returned when the provider URL does not serve an image.
var ErrNotImage = errors.New("media: downloaded content is not an image")

// Archiver copies provider-hosted scene images into our own bucket.
// Provider URLs are short-lived, so the copy is what history keeps.
type Archiver struct {
	uploader   Uploader
	httpClient *http.Client
	logger     zerolog.Logger
	maxBytes   int64
	now        func() time.Time
}

// ArchiverOptions configures an Archiver. Uploader is required.
type ArchiverOptions struct {
	Uploader   Uploader
	HTTPClient *http.Client
	Logger     zerolog.Logger
	MaxBytes   int64
}

// NewArchiver builds an Archiver.
func NewArchiver(opts ArchiverOptions) *Archiver {
	uploader := opts.Uploader
	if uploader == nil {
		uploader = Disabled()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxArchiveBytes
	}
	return &Archiver{
		uploader:   uploader,
		httpClient: httpClient,
		logger:     opts.Logger,
		maxBytes:   maxBytes,
		now:        time.Now,
	}
}

// Archive downloads imageURL and stores it under <styleKey>/<yyyy-mm-dd>/.
// It returns the stored object's URL.
func (a *Archiver) Archive(ctx context.Context, imageURL, styleKey string) (string, error) {
	if _, disabled := a.uploader.(disabledUploader); disabled {
		return "", ErrUploaderDisabled
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", errors.New("media: image url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("media: build download request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("media: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("media: download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("media: read download: %w", err)
	}
	if int64(len(data)) > a.maxBytes {
		return "", fmt.Errorf("media: download exceeds %d bytes", a.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	folder := styleKey + "/" + a.now().UTC().Format("2006-01-02")
	res, err := a.uploader.Upload(ctx, UploadInput{
		Folder:      folder,
		Filename:    "scene" + mt.Extension(),
		ContentType: mt.String(),
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		return "", err
	}
	a.logger.Debug().Str("key", res.Key).Int("bytes", len(data)).Msg("media: scene archived")
	return res.URL, nil
}
