// Package storage archives issued documents to object storage. The
// database copy stays authoritative; the archive exists for audit and
// client download.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

// Archiver stores a rendered document and returns its public URL.
type Archiver interface {
	Archive(ctx context.Context, folder, reference, html string) (string, error)
}

type S3Archive struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Archive(cfg *config.ArchiveConfig) *S3Archive {
	var awsCfg aws.Config
	var err error

	// Static credentials when provided, default chain otherwise
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &S3Archive{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// Archive uploads the rendered document under folder/reference.html.
func (s *S3Archive) Archive(ctx context.Context, folder, reference, html string) (string, error) {
	key := fmt.Sprintf("%s/%s.html", folder, reference)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(html),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive document: %w", err)
	}

	var fileURL string
	if s.baseURL != "" {
		fileURL = fmt.Sprintf("%s/%s", s.baseURL, key)
	} else {
		fileURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	}

	logger.Info("Document archived", map[string]interface{}{
		"key":    key,
		"bucket": s.bucket,
	})
	return fileURL, nil
}

// NoopArchive is used when archival is disabled. Archive succeeds
// without storing anything.
type NoopArchive struct{}

func (NoopArchive) Archive(ctx context.Context, folder, reference, html string) (string, error) {
	return "", nil
}
