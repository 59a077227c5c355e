// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package s3 is the Amazon S3 driver of the object backend.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/modules/vfs/object"
)

type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UsePathStyle    bool
}

// NewClient builds an S3 client from the default credential chain. Static
// credentials in opts take precedence.
func NewClient(ctx context.Context, opts *Options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if len(opts.Region) != 0 {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if len(opts.AccessKeyID) != 0 {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if len(cfg.Region) == 0 {
		cfg.Region = "us-east-1"
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if len(opts.Endpoint) != 0 {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

type Store struct {
	client *s3.Client
	bucket string
}

func NewStore(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Provider serves every bucket from one client.
func Provider(client *s3.Client) object.Provider {
	return func(ctx context.Context, bucket string) (object.Store, error) {
		return NewStore(client, bucket), nil
	}
}

func (s *Store) Stat(ctx context.Context, key string) (*object.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate(s.bucket, key, err)
	}
	return &object.ObjectInfo{
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ModTime:     aws.ToTime(out.LastModified),
		ETag:        aws.ToString(out.ETag),
	}, nil
}

func byteRange(offset, length int64) string {
	if length < 0 {
		return fmt.Sprintf("bytes=%d-", offset)
	}
	return fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
}

func (s *Store) GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if offset > 0 || length >= 0 {
		in.Range = aws.String(byteRange(offset, length))
	}
	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		return nil, translate(s.bucket, key, err)
	}
	return out.Body, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if len(contentType) != 0 {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return translate(s.bucket, key, err)
	}
	return nil
}

func translate(bucket, key string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return vfs.FromError(err)
	}
	code := vfs.Failed
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		code = vfs.NotFound
	case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		code = vfs.PermissionDenied
	case "InvalidRange":
		code = vfs.InvalidArgument
	}
	return vfs.Errorf(code, "s3://%s/%s: %s", bucket, key, apiErr.ErrorMessage())
}
