// Package storage archives delivered receipts, either in S3-compatible object
// storage or on the local file system.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rentbot/backend/internal/application/rentbot"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

var _ rentbot.ReceiptArchive = (*S3ReceiptArchive)(nil)

// S3ReceiptArchive writes receipt PDFs to a bucket. Any S3-compatible
// backend works (AWS S3, MinIO, RustFS).
type S3ReceiptArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// Option configures an S3ReceiptArchive
type Option func(*S3ReceiptArchive)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *S3ReceiptArchive) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewS3ReceiptArchive builds the archive from configuration. An empty
// endpoint means AWS itself; an endpoint without a scheme is taken as https.
func NewS3ReceiptArchive(ctx context.Context, cfg *config.StorageConfig, opts ...Option) (*S3ReceiptArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access key and secret key are required")
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	a := &S3ReceiptArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return endpoint, nil
}

// ObjectKey returns the full object key for a receipt key
func (a *S3ReceiptArchive) ObjectKey(key string) string {
	if a.prefix == "" {
		return key
	}
	return path.Join(a.prefix, key)
}

// Archive uploads pdf under key and returns its s3:// location
func (a *S3ReceiptArchive) Archive(ctx context.Context, key string, pdf []byte) (string, error) {
	if key == "" {
		return "", errors.New("archive key is required")
	}
	if len(pdf) == 0 {
		return "", errors.New("refusing to archive an empty document")
	}

	objectKey := a.ObjectKey(key)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(pdf),
		ContentLength: aws.Int64(int64(len(pdf))),
		ContentType:   aws.String(pdfContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt %s: %w", objectKey, err)
	}

	location := fmt.Sprintf("s3://%s/%s", a.bucket, objectKey)
	a.logger.Debug("Receipt archived", zap.String("location", location), zap.Int("bytes", len(pdf)))
	return location, nil
}

// EnsureBucket creates the bucket if it does not exist
func (a *S3ReceiptArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating receipt bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (a *S3ReceiptArchive) Bucket() string {
	return a.bucket
}
