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

package api

import (
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// AddVideoRequest is the body of POST /videos.
type AddVideoRequest struct {
	VideoURL string `json:"video_url" binding:"required,http_url"`
}

// AudioSegmentQuery is the query of GET /videos/{id}/audio-segment. Pointers
// tell a missing bound apart from zero.
type AudioSegmentQuery struct {
	FromSeconds *float64 `form:"from_seconds" binding:"required"`
	ToSeconds   *float64 `form:"to_seconds" binding:"required"`
}

// TranslateSegmentRequest is the body of POST /videos/{id}/audio-segment/translate.
type TranslateSegmentRequest struct {
	FromSeconds  *float64 `json:"from_seconds" binding:"required"`
	ToSeconds    *float64 `json:"to_seconds" binding:"required"`
	FromLanguage string   `json:"from_language" binding:"required,language"`
	ToLanguage   string   `json:"to_language" binding:"required,language"`
}

// ArchiveURLQuery is the optional query of GET /videos/{id}/archive-url.
// V4 signed and presigned URLs expire after at most 7 days (10080 minutes).
type ArchiveURLQuery struct {
	TTLMinutes int `form:"ttl_minutes" binding:"gte=0,lte=10080"`
}

type VideoModel struct {
	ID          string               `json:"id"`
	OriginalURL string               `json:"original_url"`
	VideoType   model.VideoType      `json:"video_type"`
	CreatedAt   time.Time            `json:"created_at"`
	Metadata    *model.VideoMetadata `json:"metadata"`
}

// NewVideoModel renders a video. A nil metadata is rendered as null.
func NewVideoModel(v *model.Video, metadata *model.VideoMetadata) VideoModel {
	return VideoModel{
		ID:          v.ID,
		OriginalURL: v.OriginalURL,
		VideoType:   v.VideoType,
		CreatedAt:   v.CreatedAt,
		Metadata:    metadata,
	}
}

type VideosModel struct {
	Videos []VideoModel `json:"videos"`
}

type TranslationModel struct {
	ID             string         `json:"id"`
	VideoID        string         `json:"video_id"`
	FromSeconds    float64        `json:"from_seconds"`
	ToSeconds      float64        `json:"to_seconds"`
	FromLanguage   model.Language `json:"from_language"`
	ToLanguage     model.Language `json:"to_language"`
	OriginalText   string         `json:"original_text"`
	TranslatedText string         `json:"translated_text"`
	CreatedAt      time.Time      `json:"created_at"`
}

func NewTranslationModel(t *model.Translation) TranslationModel {
	return TranslationModel{
		ID:             t.ID,
		VideoID:        t.VideoID,
		FromSeconds:    t.FromSeconds,
		ToSeconds:      t.ToSeconds,
		FromLanguage:   t.FromLanguage,
		ToLanguage:     t.ToLanguage,
		OriginalText:   t.OriginalText,
		TranslatedText: t.TranslatedText,
		CreatedAt:      t.CreatedAt,
	}
}

type TranslationsModel struct {
	Translations []TranslationModel `json:"translations"`
}

// NewTranslationsModel never renders a null list.
func NewTranslationsModel(in []*model.Translation) TranslationsModel {
	out := TranslationsModel{Translations: make([]TranslationModel, 0, len(in))}
	for _, t := range in {
		out.Translations = append(out.Translations, NewTranslationModel(t))
	}
	return out
}

type OCRModel struct {
	VideoID string `json:"video_id"`
	Text    string `json:"text"`
}

type ArchiveURLModel struct {
	URL string `json:"url"`
}
