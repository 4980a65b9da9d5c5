package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"asahigaoka/internal/apperr"
	"asahigaoka/internal/config"
	"asahigaoka/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Store keeps media binaries in an S3-compatible bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" && cfg.S3Endpoint != "" {
		publicURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3Store{client: client, bucket: cfg.S3Bucket, publicURL: publicURL}, nil
}

func (s *S3Store) Bucket() string { return s.bucket }

func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	log := logger.WithCtx(ctx)
	log.Info("Uploading object", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int64("size", size))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=3600"),
	})
	if err != nil {
		log.Error("Object upload failed", zap.String("key", key), zap.Error(err))
		return apperr.Wrap(apperr.KindUpstream, "failed to upload file", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.WithCtx(ctx).Error("Object delete failed", zap.String("key", key), zap.Error(err))
		return apperr.Wrap(apperr.KindUpstream, "failed to delete file", err)
	}
	return nil
}

func (s *S3Store) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}
