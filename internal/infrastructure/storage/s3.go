package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
)

// S3Config points the backend at AWS S3 or an S3-compatible store such as MinIO.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	KeyPrefix     string
	UsePathStyle  bool
	MaxAttempts   int
}

type S3Backend struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	keyPrefix     string
}

func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket not configured", domain.ErrRemoteUnavailable)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: s3 credentials not configured", domain.ErrRemoteUnavailable)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = defaultPublicBase(cfg)
	}

	return &S3Backend{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		keyPrefix:     strings.Trim(cfg.KeyPrefix, "/"),
	}, nil
}

func defaultPublicBase(cfg S3Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (b *S3Backend) Name() string { return "s3" }

// objectKey files uploads under a dated folder with a random component.
func (b *S3Backend) objectKey(name string) string {
	d := time.Now().UTC()
	key := fmt.Sprintf("raf/%d/%02d/%02d/%s/%s", d.Year(), d.Month(), d.Day(), uuid.New(), name)
	if b.keyPrefix != "" {
		key = b.keyPrefix + "/" + key
	}
	return key
}

func (b *S3Backend) Upload(ctx context.Context, name, contentType string, content io.Reader) (ports.RemoteObject, error) {
	key := b.objectKey(name)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ports.RemoteObject{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return ports.RemoteObject{ID: key, URL: b.publicBaseURL + "/" + escapeKey(key)}, nil
}

// Publish grants public read on an uploaded object.
func (b *S3Backend) Publish(ctx context.Context, obj ports.RemoteObject) error {
	if obj.ID == "" {
		return errors.New("s3 publish: empty object key")
	}
	_, err := b.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(obj.ID),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 put acl %s: %w", obj.ID, err)
	}
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
