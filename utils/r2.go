// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Config locates the bucket the public snapshot is mirrored to.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
	ObjectKey       string
}

// R2Mirror writes the published snapshot as a public JSON object.
type R2Mirror struct {
	client     *s3.Client
	bucket     string
	key        string
	cdnBaseURL string
}

func NewR2Mirror(ctx context.Context, cfg R2Config) (*R2Mirror, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	cdnBaseURL := cfg.CDNBaseURL
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint
	}
	key := cfg.ObjectKey
	if key == "" {
		key = "league/snapshot.json"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2Mirror{
		client:     client,
		bucket:     cfg.Bucket,
		key:        key,
		cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"),
	}, nil
}

// MirrorSnapshot uploads the payload and returns its public URL.
func (m *R2Mirror) MirrorSnapshot(ctx context.Context, data []byte) (string, error) {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(m.bucket),
		Key:          aws.String(m.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", m.cdnBaseURL, m.key), nil
}
