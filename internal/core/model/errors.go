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

import "errors"

// Sentinel errors. Callers wrap them with %w and match with errors.Is.
var (
	ErrVideoNotFound         = errors.New("video not found")
	ErrNoVideos              = errors.New("no videos have been added yet")
	ErrTranslationNotFound   = errors.New("translation not found")
	ErrInvalidSegment        = errors.New("invalid audio segment range provided")
	ErrSegmentBeyondDuration = errors.New("requested audio segment start is beyond video duration")
	ErrVideoDownload         = errors.New("video download failed")
	ErrNotAVideo             = errors.New("downloaded file is not a video")
	ErrAudioExtraction       = errors.New("audio extraction failed")
	ErrTranslator            = errors.New("translator returned an invalid response")
	ErrOCR                   = errors.New("OCR returned no text")
	ErrTTS                   = errors.New("text to speech returned no audio")
	ErrUnsupportedLanguage   = errors.New("unsupported language")
	ErrArchiveDisabled       = errors.New("no archive backend is configured")
	ErrInvalidIngestMessage  = errors.New("invalid ingest message")
)
