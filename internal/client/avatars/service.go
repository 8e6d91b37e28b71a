// Package avatars uploads profile pictures to S3-compatible object storage
// and returns the public URL stored on the profile.
package avatars

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/inclick-mx/inclick-cli/internal/logging"
)

// Config holds the object-storage settings.
type Config struct {
	Region       string
	BaseEndpoint string
	Bucket       string
	AccessKey    string
	SecretKey    string
	// PublicBaseURL is the prefix of the publicly reachable object URLs,
	// e.g. the CDN or the MinIO endpoint itself.
	PublicBaseURL string
}

// objectPutter is the slice of the S3 client the service needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service uploads avatars.
type Service struct {
	cfg    Config
	log    logging.Logger
	client objectPutter
}

// New builds a Service against the configured endpoint.
func New(ctx context.Context, cfg Config, log logging.Logger) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &Service{cfg: cfg, log: log, client: client}, nil
}

// newWithClient is the test constructor.
func newWithClient(cfg Config, client objectPutter, log logging.Logger) *Service {
	return &Service{cfg: cfg, log: log, client: client}
}

// objectKey builds a date-partitioned random key under avatars/.
func objectKey(ext string) string {
	now := time.Now()
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("avatars/%d/%02d/%v%s", now.Year(), now.Month(), uuid.New(), ext)
}

// Upload stores the avatar and returns its public URL. contentType should be
// an image MIME type; ext is the file extension used in the object key.
func (s *Service) Upload(ctx context.Context, body io.Reader, contentType, ext string) (string, error) {
	key := objectKey(ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), s.cfg.Bucket, key)
	s.log.Debug(ctx, "avatar uploaded", "key", key)
	return url, nil
}
