package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds configuration for an AWS S3 (or S3-compatible) bucket.
type S3Config struct {
	// Endpoint overrides the AWS endpoint, e.g. for LocalStack. Empty means AWS.
	Endpoint string
	// Bucket is the target bucket name.
	Bucket string
	// Region is the AWS region (e.g., "ap-northeast-2").
	Region string
	// AccessKeyID is the access key. If empty, the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	// PublicBase overrides the public URL prefix (CDN, custom domain).
	PublicBase string
	// PublicRead uploads objects with the public-read canned ACL.
	PublicRead bool
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
}

// S3Storage implements Storage on top of the AWS SDK upload manager.
type S3Storage struct {
	uploader   *manager.Uploader
	bucket     string
	publicBase string
	publicRead bool
}

// NewS3Storage builds an S3 client from cfg. No network call is made.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required for S3 client")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		// A failed upload is terminal; the caller decides what to do with it.
		o.Retryer = aws.NopRetryer{}
	})

	return &S3Storage{
		uploader:   manager.NewUploader(client),
		bucket:     cfg.Bucket,
		publicBase: s3PublicBase(cfg),
		publicRead: cfg.PublicRead,
	}, nil
}

// Put uploads body under key. size is informational only; the uploader
// buffers parts itself.
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if s.publicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", &PutError{Key: key, Err: err}
	}
	return s.PublicURL(key), nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *S3Storage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

func s3PublicBase(cfg S3Config) string {
	switch {
	case cfg.PublicBase != "":
		return cfg.PublicBase
	case cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

var _ Storage = (*S3Storage)(nil)
