// Package s3 stores user avatars and practitioner documents in an
// S3-compatible bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
)

var (
	ErrDisabled    = errors.New("file storage is not configured")
	ErrTooLarge    = errors.New("file is too large")
	ErrContentType = errors.New("unsupported file type")
)

// Store is what services depend on.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Client wraps the AWS S3 client for an S3-compatible endpoint.
type Client struct {
	s3     *s3.Client
	presig *s3.PresignClient
	bucket string
	ttl    time.Duration
}

// New returns a Store for cfg, or Disabled when cfg.Enabled is false.
func New(ctx context.Context, cfg config.S3Config) (Store, error) {
	if !cfg.Enabled {
		return Disabled{}, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(cfg.Region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	cli := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	ttl := time.Duration(cfg.PresignTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Client{
		s3:     cli,
		presig: s3.NewPresignClient(cli),
		bucket: cfg.Bucket,
		ttl:    ttl,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %q: %w", key, err)
	}
	return nil
}

// PresignDownload generates a presigned GET URL valid for the configured TTL.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := c.presig.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign %q: %w", key, err)
	}
	return req.URL, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}

// Disabled rejects every operation with ErrDisabled.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader, int64) error { return ErrDisabled }
func (Disabled) PresignDownload(context.Context, string) (string, error)        { return "", ErrDisabled }
func (Disabled) Delete(context.Context, string) error                           { return ErrDisabled }

// ---------------------------------------------------------------------------
// Keys and upload checks
// ---------------------------------------------------------------------------

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Key builds {kind}/{owner}/{uuid}{ext} for contentType.
func Key(kind string, owner uuid.UUID, contentType string) (string, error) {
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrContentType, contentType)
	}
	return path.Join(kind, owner.String(), uuid.NewString()+ext), nil
}

// CheckSize enforces the configured upload limit in megabytes.
func CheckSize(size int64, maxMB int) error {
	if maxMB <= 0 {
		maxMB = 10
	}
	if size <= 0 || size > int64(maxMB)<<20 {
		return fmt.Errorf("%w: limit is %d MB", ErrTooLarge, maxMB)
	}
	return nil
}

// File is an upload as received from a client.
type File struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// Put checks f against the size limit and stores it under a fresh key for
// kind and owner. It returns the key.
func Put(ctx context.Context, store Store, kind string, owner uuid.UUID, f File, maxMB int) (string, error) {
	if err := CheckSize(f.Size, maxMB); err != nil {
		return "", err
	}
	key, err := Key(kind, owner, f.ContentType)
	if err != nil {
		return "", err
	}
	if err := store.Upload(ctx, key, f.ContentType, f.Body, f.Size); err != nil {
		return "", err
	}
	return key, nil
}
