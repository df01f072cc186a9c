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

package model

import (
	"context"
	"time"
)

// VideoRepository stores videos. Get returns ErrVideoNotFound for an unknown
// id and Latest returns ErrNoVideos on an empty store.
type VideoRepository interface {
	List(ctx context.Context) ([]*Video, error)
	Get(ctx context.Context, id string) (*Video, error)
	Latest(ctx context.Context) (*Video, error)
	Create(ctx context.Context, video *Video) error
}

// TranslationRepository stores translations. Get returns
// ErrTranslationNotFound for an unknown id.
type TranslationRepository interface {
	List(ctx context.Context) ([]*Translation, error)
	Get(ctx context.Context, id string) (*Translation, error)
	ListByVideo(ctx context.Context, videoID string) ([]*Translation, error)
	Create(ctx context.Context, translation *Translation) error
}

// VideoDownloader fetches a remote video into dir/{id}.{ext} and returns the
// written path.
type VideoDownloader interface {
	DownloadVideo(ctx context.Context, url string, dir string, id string, videoType VideoType) (string, error)
}

// MediaProcessor wraps the external media tools.
type MediaProcessor interface {
	Probe(ctx context.Context, path string) (*VideoMetadata, error)
	ExtractAudio(ctx context.Context, path string, fromSeconds float64, toSeconds float64) ([]byte, error)
	Thumbnail(ctx context.Context, path string, out string) error
}

type Translator interface {
	Translate(ctx context.Context, wav []byte, from Language, to Language) (*TranslatorResponse, error)
}

type OCRGenerator interface {
	GenerateOCR(ctx context.Context, png []byte) (string, error)
}

// SpeechSynthesizer returns raw 16-bit PCM at 24 kHz, mono.
type SpeechSynthesizer interface {
	TextToSpeech(ctx context.Context, text string, language Language) ([]byte, error)
}

// Archiver copies local files to object storage.
type Archiver interface {
	Archive(ctx context.Context, localPath string, objectName string) (string, error)
	SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

type TranslationExporter interface {
	Export(ctx context.Context, translation *Translation) error
}
