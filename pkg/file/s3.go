package file

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of *s3.Client used by S3Storage.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket         string `env:"S3_BUCKET"`
	Region         string `env:"S3_REGION"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`
	BaseURL        string `env:"S3_BASE_URL"`
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
}

type S3Option func(*s3Options)

type s3Options struct {
	client     S3Client
	httpClient *http.Client
}

// WithS3Client injects a pre-built client, typically a mock.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// S3Storage stores objects in one bucket. It is safe for concurrent use.
type S3Storage struct {
	client  S3Client
	bucket  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &s3Options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		if o.httpClient != nil {
			loadOpts = append(loadOpts, config.WithHTTPClient(o.httpClient))
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}
		client = s3.NewFromConfig(awsCfg, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *S3Storage) Save(ctx context.Context, fh *multipart.FileHeader, key string) (*Object, error) {
	if fh == nil {
		return nil, ErrNilFileHeader
	}
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	ct, err := DetectContentType(fh)
	if err != nil {
		ct = "application/octet-stream"
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = src.Close() }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(fh.Size),
	})
	if err != nil {
		return nil, classifyS3Error(err, "upload")
	}
	return &Object{Key: key, Size: fh.Size, ContentType: ct}, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	// DeleteObject succeeds on missing keys, so check first.
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return classifyS3Error(err, "head")
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return classifyS3Error(err, "delete")
	}
	return nil
}

func (s *S3Storage) URL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}

func classifyS3Error(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrOperationTimeout, op)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s", ErrOperationCanceled, op)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, op)
		case "SlowDown", "ServiceUnavailable", "RequestTimeout":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, op)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrFileNotFound, err)
		case "NoSuchBucket":
			return ErrBucketNotFound
		}
		return fmt.Errorf("%s failed (code: %s): %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
