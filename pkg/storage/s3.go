package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"job-portal-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Provider represents the S3-compatible storage provider
type S3Provider string

const (
	S3ProviderAWS    S3Provider = "aws"
	S3ProviderWasabi S3Provider = "wasabi"
)

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
}

// S3Config holds configuration for S3-compatible storage
type S3Config struct {
	Provider        S3Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	WasabiEndpoint  string
	// PublicBaseURL, when set, replaces the provider URL in returned links (CDN).
	PublicBaseURL string
	Image         ImageOptions
}

// ObjectPutter is the slice of the S3 API the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader implements domain.AssetUploader on an S3-compatible bucket.
type S3Uploader struct {
	client ObjectPutter
	cfg    S3Config
	log    *slog.Logger
}

var _ domain.AssetUploader = (*S3Uploader)(nil)

func NewS3Uploader(client ObjectPutter, cfg S3Config, log *slog.Logger) *S3Uploader {
	if cfg.Provider == S3ProviderWasabi && cfg.WasabiEndpoint == "" {
		if endpoint, ok := WasabiEndpoints[cfg.Region]; ok {
			cfg.WasabiEndpoint = endpoint
		} else {
			cfg.WasabiEndpoint = "s3.ap-southeast-1.wasabisys.com"
		}
	}
	if cfg.Image.MaxDimension <= 0 {
		cfg.Image = DefaultImageOptions()
	}
	return &S3Uploader{client: client, cfg: cfg, log: log}
}

// NewS3Client creates an S3 client with the given config
// Supports both AWS S3 and Wasabi
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	switch cfg.Provider {
	case S3ProviderWasabi:
		endpoint := cfg.WasabiEndpoint
		if endpoint == "" {
			endpoint = WasabiEndpoints[cfg.Region]
		}
		// Wasabi requires custom endpoint and path-style addressing
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String("https://" + endpoint)
			o.UsePathStyle = true
		}), nil
	default:
		return s3.NewFromConfig(awsCfg), nil
	}
}

func (u *S3Uploader) Upload(ctx context.Context, folder string, asset *domain.Asset) (string, error) {
	data := asset.Data
	contentType := asset.ContentType
	name := sanitizeFilename(asset.Filename)

	if strings.HasPrefix(contentType, "image/") {
		compressed, err := CompressImage(data, u.cfg.Image)
		if err != nil {
			u.log.Warn("Image compression failed, using original", "error", err, "filename", asset.Filename)
		} else {
			u.log.Debug("Image compressed", "from", len(data), "to", len(compressed))
			data = compressed
			contentType = "image/jpeg"
			name = strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
		}
	}

	key := path.Join(folder, uuid.NewString()+"_"+name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if u.cfg.PublicBaseURL != "" {
		return u.cfg.PublicBaseURL + "/" + escaped
	}
	if u.cfg.Provider == S3ProviderWasabi {
		return fmt.Sprintf("https://%s/%s/%s", u.cfg.WasabiEndpoint, u.cfg.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, escaped)
}

// sanitizeFilename keeps ASCII letters, digits, '_' and '-' in the base name
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.ReplaceAll(base, " ", "_")

	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		result.WriteString("file")
	}
	return result.String() + ext
}
