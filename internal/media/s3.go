// Package media uploads card images to an S3-compatible object store and
// hands back durable public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrUpload marks any failure while pushing a file to the media host.
// Callers must not persist records that reference an image which never
// made it to the host.
var ErrUpload = errors.New("media upload failed")

// Uploader accepts raw file bytes and returns a public URL for them.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Config carries the S3 connection settings. Credentials come from the
// environment; the rest from the config file.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Folder    string
	AccessKey string
	SecretKey string
}

// putObjectAPI is the slice of the S3 client the adapter needs; tests
// substitute a stub.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Host stores uploads in a single bucket under a fixed key prefix.
type S3Host struct {
	cfg    Config
	client putObjectAPI
}

var _ Uploader = (*S3Host)(nil)

// NewS3Host builds the adapter with static credentials and a custom base
// endpoint, so MinIO and other S3-compatible stores work unchanged.
func NewS3Host(cfg Config) (*S3Host, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Host{cfg: cfg, client: client}, nil
}

// Upload stores data under a fresh key inside the configured folder and
// returns the public URL. The original filename only contributes its
// extension; the key itself is random so concurrent uploads never collide.
func (h *S3Host) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUpload)
	}

	key := h.objectKey(filename)
	contentType := detectContentType(filename, data)

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %q: %v", ErrUpload, key, err)
	}

	return h.publicURL(key), nil
}

func (h *S3Host) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return h.cfg.Folder + "/" + uuid.NewString() + ext
}

func (h *S3Host) publicURL(key string) string {
	return strings.TrimRight(h.cfg.Endpoint, "/") + "/" + h.cfg.Bucket + "/" + key
}

// detectContentType prefers the filename extension and falls back to
// sniffing the payload.
func detectContentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
