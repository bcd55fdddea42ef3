package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-resty/resty/v2"
)

// Mirror copies featured images into an R2/S3 bucket so published posts do
// not depend on third-party image hosting.
type Mirror struct {
	s3       *s3.Client
	http     *resty.Client
	bucket   string
	endpoint string
}

// NewMirror builds an R2-backed mirror. Endpoint, keys and bucket come from
// configuration; an empty endpoint disables mirroring at the call site.
func NewMirror(ctx context.Context, endpoint, accessKey, secretKey, bucket string) (*Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Mirror{
		s3:       client,
		http:     resty.New().SetTimeout(20 * time.Second),
		bucket:   bucket,
		endpoint: endpoint,
	}, nil
}

// MirrorImage downloads the image and uploads it under the given key,
// returning the mirrored URL.
func (m *Mirror) MirrorImage(ctx context.Context, imageURL, key string) (string, error) {
	resp, err := m.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d downloading image", resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = m.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(resp.Body()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to bucket: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", m.endpoint, m.bucket, key), nil
}
