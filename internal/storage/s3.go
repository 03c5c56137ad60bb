package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const imageCacheControl = "max-age=8640000"

// S3Store publishes resized variants to the image bucket. Uploaded
// objects are publicly readable; the returned URL is what clients fetch
// directly, so there is no presign surface here.
type S3Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	region        string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, region, bucket, endpoint, publicBaseURL string) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		region:        region,
		publicBaseURL: publicBaseURL,
	}, nil
}

// Upload streams the local file to the bucket under key and returns its
// public URL.
func (s *S3Store) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	defer f.Close()
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String("image/jpeg"),
		CacheControl: aws.String(imageCacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

// Delete removes an object. Used only to compensate a partially
// published run after a later upload failed.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) publicURL(key string) string {
	// escape per path segment so the shard prefix slash survives
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segs, "/")
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}
