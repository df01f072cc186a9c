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

// Package downloader fetches remote videos over HTTP.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

const (
	DefaultTimeout      = 60 * time.Second
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "tower-of-babel-video/1.0"
)

// HTTPDownloader streams a GET response to disk.
type HTTPDownloader struct {
	client    *http.Client
	userAgent string
}

// NewHTTPDownloader returns a downloader with the default timeout and
// redirect limit. Use NewHTTPDownloaderWithClient to supply a client.
func NewHTTPDownloader() *HTTPDownloader {
	client := &http.Client{
		Timeout: DefaultTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= DefaultMaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return NewHTTPDownloaderWithClient(client)
}

func NewHTTPDownloaderWithClient(client *http.Client) *HTTPDownloader {
	return &HTTPDownloader{client: client, userAgent: DefaultUserAgent}
}

// DownloadVideo writes the body of url to dir/{id}.{ext} and returns the path.
// Any failure is wrapped in model.ErrVideoDownload and leaves no file behind.
func (d *HTTPDownloader) DownloadVideo(ctx context.Context, url string, dir string, id string, videoType model.VideoType) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create directory %s: %w", model.ErrVideoDownload, dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrVideoDownload, url, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrVideoDownload, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: unexpected status %s", model.ErrVideoDownload, url, resp.Status)
	}

	path = filepath.Join(dir, id+"."+videoType.Extension())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrVideoDownload, url, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	written, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrVideoDownload, url, err)
	}

	slog.InfoContext(ctx, "video downloaded", "url", url, "path", path, "bytes", written)
	return path, nil
}
