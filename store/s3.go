package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 stores each collection as the object <prefix><collection>.json and uses
// the object ETag for conditional writes. A multi-collection Apply checks
// every ETag up front but the puts themselves are not atomic as a group.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

type S3Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	// Endpoint points the client at an S3-compatible server (MinIO and the
	// like) using path-style addressing. Empty means AWS.
	Endpoint string
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
			// Many S3-compatible servers reject the default trailing checksums.
			so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			so.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})
	return &S3{
		client: client,
		bucket: o.Bucket,
		prefix: o.Prefix,
	}, nil
}

func (s *S3) Close(context.Context) error { return nil }

func (s *S3) key(c Collection) string {
	return s.prefix + string(c) + ".json"
}

func (s *S3) Load(ctx context.Context, c Collection) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(c)),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) || isNotFound(err) {
		return &Document{Collection: c, Records: emptyRecords()}, nil
	}
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	return &Document{Collection: c, Records: data, ETag: aws.ToString(out.ETag)}, nil
}

func (s *S3) Apply(ctx context.Context, writes ...Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, w := range writes {
		etag, err := s.head(ctx, w.Collection)
		if err != nil {
			return err
		}
		if etag != w.IfMatch {
			return fmt.Errorf("%w: %s at %s, expected %s", ErrVersionConflict, w.Collection, etag, w.IfMatch)
		}
	}
	for _, w := range writes {
		in := &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.key(w.Collection)),
			Body:        bytes.NewReader(w.Records),
			ContentType: aws.String("application/json"),
		}
		if w.IfMatch == "" {
			in.IfNoneMatch = aws.String("*")
		} else {
			in.IfMatch = aws.String(w.IfMatch)
		}
		if _, err := s.client.PutObject(ctx, in); err != nil {
			if isPreconditionFailed(err) {
				return fmt.Errorf("%w: %s", ErrVersionConflict, w.Collection)
			}
			return err
		}
	}
	return nil
}

func (s *S3) head(ctx context.Context, c Collection) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(c)),
	})
	var notFound *types.NotFound
	if errors.As(err, &notFound) || isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return aws.ToString(out.ETag), nil
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

// isNotFound catches 404s the SDK could not map to a modelled error, such as
// a HEAD response, which has no body to carry an error code.
func isNotFound(err error) bool {
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404
}
