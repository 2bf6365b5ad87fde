package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/tastegent/tastegent/internal/config"
	"github.com/tastegent/tastegent/internal/domain"
)

// SeaweedS3Repository implements domain.FileRepository against any
// S3-compatible store (SeaweedFS, MinIO, AWS)
type SeaweedS3Repository struct {
	client *s3.Client
	bucket string
}

// NewSeaweedS3Repository creates a new S3 repository
func NewSeaweedS3Repository(ctx context.Context, cfg appConfig.S3Config) (*SeaweedS3Repository, error) {
	// Load AWS configuration
	// For SeaweedFS (or generic S3), we need to override the endpoint resolution
	// We use static credentials "any"/"any" because SeaweedFS/MinIO often require signatures
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("any", "any", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	// Create S3 client
	// We use the functional options pattern for the client to override the endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for many S3-compatible stores including SeaweedFS
	})

	repo := &SeaweedS3Repository{
		client: client,
		bucket: cfg.Bucket,
	}

	// Ensure bucket exists
	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// Upload saves a file to S3. The returned URL is the app-relative path the
// API serves the object back under, so stored references survive bucket or
// endpoint moves.
func (r *SeaweedS3Repository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	key := "uploads/" + filename

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return "/uploads/" + filename, nil
}

// Download fetches a stored file's bytes and content type
func (r *SeaweedS3Repository) Download(ctx context.Context, filename string) ([]byte, string, error) {
	key := "uploads/" + filename

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// The SDK wraps NoSuchKey in an operation error; callers only care
		// that the object is gone.
		return nil, "", domain.ErrFileNotFound
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object body: %w", err)
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return data, contentType, nil
}

// ensureBucket checks if bucket exists, creating it if necessary
func (r *SeaweedS3Repository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})

	if err != nil {
		// Bucket likely missing; try to create it
		_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(r.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
		}
	}
	return nil
}
