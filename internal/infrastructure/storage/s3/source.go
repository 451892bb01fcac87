// Package s3 reads model artifacts from an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/infrastructure/resilience"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type Source struct {
	client   objectGetter
	bucket   string
	prefix   string
	executor *resilience.Executor
}

// New builds a client from the default AWS credential chain. Static keys and a custom
// endpoint (MinIO, R2) override it when set.
func New(ctx context.Context, opts Options, executor *resilience.Executor) (*Source, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3 artifact source: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, opts.Bucket, opts.Prefix, executor), nil
}

func NewWithClient(client objectGetter, bucket, prefix string, executor *resilience.Executor) *Source {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig(), nil)
	}
	return &Source{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		executor: executor,
	}
}

// Open downloads the whole object before returning so that retries cover the body read.
func (s *Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey := s.objectKey(key)
	body, err := resilience.Call(ctx, s.executor, "s3.get_object", func(ctx context.Context) ([]byte, error) {
		return s.download(ctx, objectKey)
	}, resilience.ClassifyTemporary)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (s *Source) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

func (s *Source) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *Source) download(ctx context.Context, objectKey string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, classifyGetError(objectKey, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "read s3 object", fmt.Errorf("%s: %w", objectKey, err))
	}
	return buf.Bytes(), nil
}

func classifyGetError(objectKey string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return domain.WrapError(domain.ErrMissingArtifact, "get s3 object", fmt.Errorf("%s: %w", objectKey, err))
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch code := respErr.HTTPStatusCode(); {
		case code == 404:
			return domain.WrapError(domain.ErrMissingArtifact, "get s3 object", fmt.Errorf("%s: %w", objectKey, err))
		case code == 429 || code >= 500:
			return domain.WrapError(domain.ErrTemporary, "get s3 object", fmt.Errorf("%s: %w", objectKey, err))
		}
	}
	return fmt.Errorf("get s3 object %s: %w", objectKey, err)
}
