package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config represents the settings required to talk to S3 or an S3-compatible API.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

// putObjectAPI is the subset of *s3.Client the uploader calls.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewUploader wires an S3 client if the configuration is complete, otherwise a disabled uploader.
func NewUploader(ctx context.Context, cfg Config) (Uploader, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return Disabled(), nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	return newS3Uploader(client, cfg), nil
}

func newS3Uploader(client putObjectAPI, cfg Config) *s3Uploader {
	// S3-compatible stores without a CDN are read back through the endpoint.
	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" && cfg.Endpoint != "" && cfg.ForcePathStyle {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}

	return &s3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: publicURL,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		newID:   uuid.NewString,
	}
}

type s3Uploader struct {
	client  putObjectAPI
	bucket  string
	region  string
	baseURL string
	prefix  string
	newID   func() string
}

// Upload stores the incoming file in the configured bucket and returns a public URL.
func (u *s3Uploader) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, errors.New("upload body is required")
	}

	key := u.buildKey(input.Folder, input.Filename)

	putInput := &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         input.Body,
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if input.ContentType != "" {
		putInput.ContentType = aws.String(input.ContentType)
	}
	if input.Size > 0 {
		putInput.ContentLength = aws.Int64(input.Size)
	}

	if _, err := u.client.PutObject(ctx, putInput); err != nil {
		return UploadResult{}, fmt.Errorf("put object: %w", err)
	}

	return UploadResult{
		Key: key,
		URL: u.objectURL(key),
	}, nil
}

func (u *s3Uploader) buildKey(folder, filename string) string {
	name := u.newID()
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		name += ext
	}

	parts := make([]string, 0, 3)
	if u.prefix != "" {
		parts = append(parts, u.prefix)
	}
	if f := strings.Trim(path.Clean("/"+folder), "/"); f != "" {
		parts = append(parts, f)
	}
	parts = append(parts, name)
	return path.Join(parts...)
}

func (u *s3Uploader) objectURL(key string) string {
	if u.baseURL != "" {
		return fmt.Sprintf("%s/%s", u.baseURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
