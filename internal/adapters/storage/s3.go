// Package storage holds the object-storage adapter for avatar files.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lionshub/internal/domain"
)

// S3Config holds configuration for the S3 avatar store.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL is the URL prefix under which uploaded objects are
	// publicly reachable (bucket website or CDN).
	PublicBaseURL string
}

// NewAvatarStorage creates an AvatarStorage from config. An empty bucket
// yields a no-op store for local development.
func NewAvatarStorage(config S3Config) domain.AvatarStorage {
	if config.Bucket == "" {
		log.Printf("[STORAGE] No S3 bucket configured, using noop avatar store")
		return &noopStorage{}
	}
	awsCfg := aws.Config{
		Region: config.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		),
	}
	return &s3Storage{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        config.Bucket,
		publicBaseURL: strings.TrimSuffix(config.PublicBaseURL, "/"),
	}
}

type s3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func (s *s3Storage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

type noopStorage struct{}

func (n *noopStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	log.Println("[STORAGE] Avatar would be stored (noop)", "key", key)
	return "/static/avatars/placeholder.png", nil
}

func (n *noopStorage) Delete(ctx context.Context, key string) error {
	return nil
}
