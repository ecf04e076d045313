// Package s3 uploads exported artifacts to an S3 bucket.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// api is the subset of the S3 client the uploader needs; tests substitute a
// fake.
type api interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Uploader copies local files into a fixed bucket.
type Uploader struct {
	client api
	bucket string
	logger *slog.Logger
}

// NewUploader builds an uploader using the default AWS credential chain
// (environment variables, which main pre-populates from .env when present).
func NewUploader(ctx context.Context, bucket, region string, logger *slog.Logger) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Uploader{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

// Upload streams the file at localPath to s3://<bucket>/<key>. Failures are
// surfaced to the caller, never swallowed.
func (u *Uploader) Upload(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, u.bucket, key, err)
	}

	u.logger.Info("uploaded artifact", "bucket", u.bucket, "key", key)
	return nil
}
