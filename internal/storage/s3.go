package storage

import (
	"bytes"
	"context"
	"time"

	"liftlog/workout-app/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// s3Storage implements ObjectStorage on an S3-compatible backend.
type s3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (ObjectStorage, error) {
	// Custom resolver for S3-compatible endpoints (MinIO, Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Errorf("failed to load AWS SDK config for S3: %s", err)
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		// path-style addressing is required by most S3-compatible services
		o.UsePathStyle = cfg.Endpoint != ""
	})

	log.Infof("S3 storage initialized for endpoint: %q, bucket: %s", cfg.Endpoint, cfg.BucketName)

	return &s3Storage{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
	}, nil
}

func (s *s3Storage) PutObject(ctx context.Context, objectKey, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		log.Errorf("failed to put object '%s' into bucket '%s': %s", objectKey, s.bucketName, err)
		return err
	}
	log.Debugf("stored object '%s' (%d bytes)", objectKey, len(body))
	return nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		log.Errorf("failed to generate presigned GET URL for key '%s': %s", objectKey, err)
		return "", err
	}
	return req.URL, nil
}

// DeleteObject removes an object from the S3 bucket.
func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Errorf("failed to delete object '%s' from bucket '%s': %s", objectKey, s.bucketName, err)
		return err
	}
	log.Infof("deleted object '%s' from bucket '%s'", objectKey, s.bucketName)
	return nil
}
