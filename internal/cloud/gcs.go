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
	"io"
	"log/slog"
	"os"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// GCSArchiver copies local files into a Cloud Storage bucket and hands out V4
// signed URLs for them.
type GCSArchiver struct {
	client      *storage.Client
	iam         *credentials.IamCredentialsClient
	bucket      string
	signerEmail string
}

// NewGCSArchiver signs URLs with the IAM SignBlob API when both iam and
// signerEmail are set, and with the client's own credentials otherwise.
func NewGCSArchiver(client *storage.Client, iam *credentials.IamCredentialsClient, bucket string, signerEmail string) *GCSArchiver {
	return &GCSArchiver{client: client, iam: iam, bucket: bucket, signerEmail: signerEmail}
}

// Archive streams localPath to gs://bucket/objectName and returns that URI.
func (a *GCSArchiver) Archive(ctx context.Context, localPath string, objectName string) (string, error) {
	in, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = in.Close() }()

	writer := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	written, err := io.Copy(writer, in)
	if err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("upload %s to gs://%s/%s after %d bytes: %w", localPath, a.bucket, objectName, written, err)
	}
	// Close finalizes the object; an error here means nothing was stored.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize gs://%s/%s: %w", a.bucket, objectName, err)
	}

	uri := fmt.Sprintf("gs://%s/%s", a.bucket, objectName)
	slog.InfoContext(ctx, "archived file", "path", localPath, "uri", uri, "bytes", written)
	return uri, nil
}

// SignedURL returns a GET URL for objectName that expires after ttl.
func (a *GCSArchiver) SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	}
	if a.iam != nil && a.signerEmail != "" {
		opts.GoogleAccessID = a.signerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := a.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", a.signerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}

	u, err := a.client.Bucket(a.bucket).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", a.bucket, objectName, err)
	}
	return u, nil
}
