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

// Package commands holds the steps of the ingest and translation workflows.
// Each step is a cor.Command; steps share state through the keys below.
package commands

// Context keys shared between commands.
const (
	ParamVideo              = "__VIDEO__"               // *model.Video
	ParamVideoPath          = "__VIDEO_PATH__"          // string
	ParamThumbnailPath      = "__THUMBNAIL_PATH__"      // string
	ParamArchiveURIs        = "__ARCHIVE_URIS__"        // []string
	ParamSegmentRequest     = "__SEGMENT_REQUEST__"     // *model.SegmentRequest
	ParamAudioSegment       = "__AUDIO_SEGMENT__"       // *model.AudioSegment
	ParamTranslatorResponse = "__TRANSLATOR_RESPONSE__" // *model.TranslatorResponse
	ParamTranslation        = "__TRANSLATION__"         // *model.Translation
)
