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

// Package services contains the business logic behind the HTTP API: video
// registration, audio segment extraction and translation.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/RichNachos/tower-of-babel-video/internal/core/workflow"
)

// DefaultSignedURLTTL is used when ArchiveURL gets no positive ttl and none
// is configured.
const DefaultSignedURLTTL = time.Hour

// VideoServiceDeps are the collaborators of VideoService. Archiver and OCR are
// optional; the features that need them report an error when they are nil.
type VideoServiceDeps struct {
	Videos       model.VideoRepository
	Downloader   model.VideoDownloader
	Media        model.MediaProcessor
	OCR          model.OCRGenerator
	Archiver     model.Archiver
	Layout       model.StorageLayout
	SignedURLTTL time.Duration
}

type VideoService struct {
	deps   VideoServiceDeps
	ingest cor.Command
}

func NewVideoService(deps VideoServiceDeps) *VideoService {
	if deps.SignedURLTTL <= 0 {
		deps.SignedURLTTL = DefaultSignedURLTTL
	}
	return &VideoService{
		deps: deps,
		ingest: workflow.NewVideoIngestWorkflow(workflow.VideoIngestDeps{
			Downloader: deps.Downloader,
			Media:      deps.Media,
			Videos:     deps.Videos,
			Archiver:   deps.Archiver,
			Layout:     deps.Layout,
		}),
	}
}

// Layout is where the service keeps its files.
func (s *VideoService) Layout() model.StorageLayout {
	return s.deps.Layout
}

// GetVideos returns every video, oldest first.
func (s *VideoService) GetVideos(ctx context.Context) ([]*model.Video, error) {
	return s.deps.Videos.List(ctx)
}

// AddVideo registers the video at url. On failure every file the ingest wrote
// is removed.
func (s *VideoService) AddVideo(ctx context.Context, url string) (*model.Video, error) {
	video := model.NewVideo(url)

	chainCtx := cor.NewBaseContext(ctx)
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, video)

	s.ingest.Execute(chainCtx)
	if err := chainCtx.Err(); err != nil {
		s.removeFiles(ctx, video)
		return nil, err
	}
	slog.InfoContext(ctx, "video added", "id", video.ID, "url", url)
	return s.GetVideo(ctx, video.ID)
}

func (s *VideoService) removeFiles(ctx context.Context, video *model.Video) {
	for _, path := range []string{s.deps.Layout.VideoPath(video.ID, video.VideoType), s.deps.Layout.ThumbnailPath(video.ID)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(ctx, "failed to remove file of failed ingest", "path", path, "error", err)
		}
	}
}

// GetVideo returns model.ErrVideoNotFound for an unknown id.
func (s *VideoService) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	return s.deps.Videos.Get(ctx, id)
}

// GetLastVideo returns the newest video, or model.ErrNoVideos.
func (s *VideoService) GetLastVideo(ctx context.Context) (*model.Video, error) {
	return s.deps.Videos.Latest(ctx)
}

// ExtractVideoMetadata probes the stored file of a video.
func (s *VideoService) ExtractVideoMetadata(ctx context.Context, id string, videoType model.VideoType) (*model.VideoMetadata, error) {
	path, err := s.videoFile(id, videoType)
	if err != nil {
		return nil, err
	}
	return s.deps.Media.Probe(ctx, path)
}

// ExtractAudioSegment clips [fromSeconds, toSeconds] of the video's audio as
// 44.1 kHz 16-bit WAV. A range ending past the end of the video is clamped to
// its duration; the returned segment carries the clamped range.
func (s *VideoService) ExtractAudioSegment(ctx context.Context, id string, videoType model.VideoType, fromSeconds float64, toSeconds float64) (*model.AudioSegment, error) {
	path, err := s.videoFile(id, videoType)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(fromSeconds) || math.IsNaN(toSeconds) || fromSeconds < 0 || toSeconds < fromSeconds {
		return nil, fmt.Errorf("%w: from %gs, to %gs", model.ErrInvalidSegment, fromSeconds, toSeconds)
	}

	metadata, err := s.deps.Media.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAudioExtraction, err)
	}
	if toSeconds > metadata.DurationSeconds {
		toSeconds = metadata.DurationSeconds
		if fromSeconds >= toSeconds {
			return nil, fmt.Errorf("%w: start %gs, duration %gs", model.ErrSegmentBeyondDuration, fromSeconds, metadata.DurationSeconds)
		}
	}

	data, err := s.deps.Media.ExtractAudio(ctx, path, fromSeconds, toSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAudioExtraction, err)
	}
	return &model.AudioSegment{Data: data, FromSeconds: fromSeconds, ToSeconds: toSeconds}, nil
}

// Thumbnail returns the path of the video's thumbnail, writing it first when
// it is missing.
func (s *VideoService) Thumbnail(ctx context.Context, id string) (string, error) {
	video, err := s.GetVideo(ctx, id)
	if err != nil {
		return "", err
	}
	out := s.deps.Layout.ThumbnailPath(video.ID)
	if info, err := os.Stat(out); err == nil && info.Mode().IsRegular() {
		return out, nil
	}

	path, err := s.videoFile(video.ID, video.VideoType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.deps.Layout.ThumbnailsDir(), 0o755); err != nil {
		return "", fmt.Errorf("create thumbnails directory: %w", err)
	}
	if err := s.deps.Media.Thumbnail(ctx, path, out); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "thumbnail regenerated", "id", video.ID)
	return out, nil
}

// OCRThumbnail returns the text visible on the video's thumbnail.
func (s *VideoService) OCRThumbnail(ctx context.Context, id string) (string, error) {
	if s.deps.OCR == nil {
		return "", fmt.Errorf("%w: no OCR generator configured", model.ErrOCR)
	}
	path, err := s.Thumbnail(ctx, id)
	if err != nil {
		return "", err
	}
	png, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read thumbnail: %w", err)
	}
	return s.deps.OCR.GenerateOCR(ctx, png)
}

// ArchiveURL returns a signed URL of the archived copy of the video, valid
// for ttl, or for the configured ttl when ttl is not positive.
func (s *VideoService) ArchiveURL(ctx context.Context, id string, ttl time.Duration) (string, error) {
	if s.deps.Archiver == nil {
		return "", model.ErrArchiveDisabled
	}
	video, err := s.GetVideo(ctx, id)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.deps.SignedURLTTL
	}
	return s.deps.Archiver.SignedURL(ctx, model.VideoObjectName(video.ID, video.VideoType), ttl)
}

// videoFile returns the stored file of a video, or model.ErrVideoNotFound
// when it is not a regular file.
func (s *VideoService) videoFile(id string, videoType model.VideoType) (string, error) {
	path := s.deps.Layout.VideoPath(id, videoType)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: no file for video %s at %s", model.ErrVideoNotFound, id, path)
	}
	return path, nil
}
