// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Archiver copies local files into an S3 (or S3 compatible) bucket.
type S3Archiver struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Archiver builds a client from the storage configuration. Static keys
// are used when both are set, the default AWS credential chain otherwise. A
// custom endpoint switches to path-style addressing.
func NewS3Archiver(ctx context.Context, storage Storage) (*S3Archiver, error) {
	if storage.S3Bucket == "" {
		return nil, fmt.Errorf("s3 archive backend requires storage.s3_bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if storage.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(storage.S3Region))
	}
	if storage.S3AccessKey != "" && storage.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(storage.S3AccessKey, storage.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if storage.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(storage.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  storage.S3Bucket,
	}, nil
}

// Archive uploads localPath as objectName and returns its s3:// URI.
func (a *S3Archiver) Archive(ctx context.Context, localPath string, objectName string) (string, error) {
	in, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = in.Close() }()

	input := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectName),
		Body:   in,
	}
	if contentType := mime.TypeByExtension(filepath.Ext(objectName)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, a.bucket, objectName, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", a.bucket, objectName)
	slog.InfoContext(ctx, "archived file", "path", localPath, "uri", uri)
	return uri, nil
}

// SignedURL presigns a GET for objectName valid for ttl.
func (a *S3Archiver) SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectName),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s: %w", a.bucket, objectName, err)
	}
	return req.URL, nil
}
