package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// ErrNotConfigured is returned when no object storage is configured. Content
// writes still succeed without an image; callers log and continue.
var ErrNotConfigured = errors.New("image storage not configured")

const maxImageSize = 5 * 1024 * 1024 // 5MB

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ImageStorage uploads image bytes and returns the public URL.
type ImageStorage interface {
	Store(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) Store(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	return "", ErrNotConfigured
}

// S3Storage uploads images directly to an S3 bucket.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	client := s3.NewFromConfig(cfg)

	return &S3Storage{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Store validates and uploads the image under a unique key, returning the
// public URL.
func (s *S3Storage) Store(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	if err := validateImage(contentType, int64(len(data))); err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload image to S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	var fileURL string
	if s.baseURL != "" {
		// CloudFront or custom domain
		fileURL = fmt.Sprintf("%s/%s", s.baseURL, key)
	} else {
		fileURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	}

	logger.Debug("Image uploaded", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})
	return fileURL, nil
}

func validateImage(contentType string, size int64) error {
	if size > maxImageSize {
		return fmt.Errorf("image size exceeds maximum allowed size of %d bytes", maxImageSize)
	}
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
