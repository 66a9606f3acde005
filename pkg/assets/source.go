package assets

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/prerender/internal/config"
)

// Source reads the raw build stats.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads build stats from the local filesystem.
type FileSource struct {
	Path string
}

// Read implements Source.
func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

// S3Client is the subset of the S3 API used by S3Source.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads build stats from an S3 object, for deployments where the
// client bundle is published to a bucket rather than shipped with the server.
type S3Source struct {
	Client S3Client
	Bucket string
	Key    string
}

// NewS3Source creates an S3Source using the default AWS credential chain.
func NewS3Source(ctx context.Context, cfg config.S3Config) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{Client: client, Bucket: cfg.Bucket, Key: cfg.Key}, nil
}

// Read implements Source.
func (s *S3Source) Read(ctx context.Context) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Source) String() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// NewSource picks the stats source described by the configuration.
func NewSource(ctx context.Context, cfg *config.Config) (Source, error) {
	if cfg.Assets.S3 != nil {
		return NewS3Source(ctx, *cfg.Assets.S3)
	}
	return FileSource{Path: cfg.StatsPath()}, nil
}
