package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Compile-time check that S3 implements ObjectStore.
var _ ObjectStore = (*S3)(nil)

// PutObjectAPI is the subset of the S3 client used by S3.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket and how its objects are addressed.
type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	// (MinIO, R2, Supabase storage). Path-style addressing is used when set.
	Endpoint string
	// PublicURL is the base URL objects are served from. Defaults to the
	// virtual-hosted AWS bucket URL.
	PublicURL string
}

// S3 implements ObjectStore on an S3-compatible bucket.
type S3 struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
}

// NewS3 wraps an existing client.
func NewS3(client PutObjectAPI, cfg S3Config) *S3 {
	base := cfg.PublicURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(base, "/")}
}

// OpenS3 builds a client from the default AWS credential chain.
func OpenS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3(client, cfg), nil
}

// Write uploads data with a single PutObject. When Overwrite is false the
// request is conditional on the key being absent.
func (s *S3) Write(ctx context.Context, p string, data io.Reader, opts WriteOptions) (int64, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return 0, fmt.Errorf("reading data: %w", err)
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(strings.TrimLeft(p, "/")),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		in.CacheControl = aws.String(opts.CacheControl)
	}
	if !opts.Overwrite {
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return 0, fmt.Errorf("put %s: %w", p, ErrExists)
		}
		return 0, fmt.Errorf("put %s: %w", p, err)
	}
	return int64(len(body)), nil
}

// PublicURL returns <publicURL>/<path>.
func (s *S3) PublicURL(p string) string {
	return s.publicURL + "/" + strings.TrimLeft(p, "/")
}
