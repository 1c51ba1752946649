package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3PutAPI is the subset of the S3 client used by the archive store.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements Store on an AWS S3 bucket.
type s3Store struct {
	client S3PutAPI
	bucket string
	logger zerolog.Logger
}

// NewS3Store creates a store for bucket using the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket, region string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "archive-s3-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 archive store initialised")

	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, logger), nil
}

// NewS3StoreWithClient creates a store on an existing client.
func NewS3StoreWithClient(client S3PutAPI, bucket string, logger zerolog.Logger) Store {
	return &s3Store{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Save uploads data with key as the full object key.
func (s *s3Store) Save(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Info().Str("location", location).Int("bytes", len(data)).Msg("archive uploaded")
	return location, nil
}
