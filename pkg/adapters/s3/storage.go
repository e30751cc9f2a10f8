// Package s3 implements core.Storage on an S3-compatible bucket.
// Each key is one object.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/introspection"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aretw0/jotter/pkg/core"
)

// Config holds the configuration for the S3 storage.
type Config struct {
	// Endpoint overrides the AWS endpoint for S3-compatible services.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Prefix is prepended to every object key.
	Prefix string
	// UsePathStyle is required by most self-hosted S3 implementations.
	UsePathStyle bool
	ReadOnly     bool
	Logger       *slog.Logger
}

// Storage implements core.Storage with PutObject/GetObject/DeleteObject.
type Storage struct {
	config Config
	client *s3.Client
}

// New loads the AWS configuration and builds a client.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewFromClient(client, cfg), nil
}

// NewFromClient wraps an existing S3 client.
func NewFromClient(client *s3.Client, cfg Config) *Storage {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{config: cfg, client: client}
}

// Initialize checks that the bucket is reachable.
func (s *Storage) Initialize(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.config.Bucket)})
	if err != nil {
		return fmt.Errorf("failed to reach bucket %q: %w", s.config.Bucket, err)
	}
	return nil
}

// Get reads the object stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &notFound) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read object body %q: %w", key, err)
	}
	return string(data), nil
}

// Set uploads value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader([]byte(value)),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	s.config.Logger.Debug("key written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes the object. S3 treats a missing key as success.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

func (s *Storage) objectKey(key string) string {
	return s.config.Prefix + key
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	Region   string `json:"region"`
	ReadOnly bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return StorageState{
		Bucket:   s.config.Bucket,
		Prefix:   s.config.Prefix,
		Endpoint: s.config.Endpoint,
		Region:   s.config.Region,
		ReadOnly: s.config.ReadOnly,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "s3"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Initializer = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
