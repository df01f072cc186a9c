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

// Package model defines the entities of the service (videos and their
// translations), the errors the services report and the interfaces of every
// collaborator the services depend on.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VideoType is the container format of a stored video.
type VideoType string

const (
	VideoTypeMP4 VideoType = "mp4"
)

// Extension is the file extension for the type, without the leading dot.
func (t VideoType) Extension() string {
	return string(t)
}

// ParseVideoType accepts a known type name, case-insensitively. An empty
// string yields the default type, mp4.
func ParseVideoType(s string) (VideoType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(VideoTypeMP4):
		return VideoTypeMP4, nil
	default:
		return "", fmt.Errorf("unsupported video type %q", s)
	}
}

// Video is a video registered from a URL. The file itself lives under the
// storage layout, keyed by ID and type.
type Video struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	VideoType   VideoType `json:"video_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewVideo creates a video with a random id and the default type.
func NewVideo(originalURL string) *Video {
	return &Video{
		ID:          uuid.NewString(),
		OriginalURL: originalURL,
		VideoType:   VideoTypeMP4,
		// Stores keep microseconds; truncating keeps round trips equal.
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// VideoMetadata is what ffprobe reports about a stored video.
type VideoMetadata struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
}

// IngestRequest is the payload of an asynchronous ingest message.
type IngestRequest struct {
	VideoURL string `json:"video_url"`
}
