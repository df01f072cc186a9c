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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Language is a language the translator can work with.
type Language string

const (
	English Language = "English"
	Spanish Language = "Spanish"
)

// Languages lists every supported language.
var Languages = []Language{English, Spanish}

var languageCodes = map[Language]string{
	English: "EN",
	Spanish: "ES",
}

// ParseLanguage accepts the language name ("English") or its ISO 639-1 code
// ("EN"), in any case.
func ParseLanguage(s string) (Language, error) {
	in := strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(in, string(l)) || strings.EqualFold(in, languageCodes[l]) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

// Code returns the upper case ISO 639-1 code.
func (l Language) Code() string {
	return languageCodes[l]
}

func (l Language) String() string {
	return string(l)
}

func (l *Language) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseLanguage(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Translation is the persisted result of translating one audio segment. The
// range is the one actually clipped, after clamping to the video duration.
type Translation struct {
	ID             string    `json:"id" bigquery:"id"`
	VideoID        string    `json:"video_id" bigquery:"video_id"`
	FromSeconds    float64   `json:"from_seconds" bigquery:"from_seconds"`
	ToSeconds      float64   `json:"to_seconds" bigquery:"to_seconds"`
	FromLanguage   Language  `json:"from_language" bigquery:"from_language"`
	ToLanguage     Language  `json:"to_language" bigquery:"to_language"`
	OriginalText   string    `json:"original_text" bigquery:"original_text"`
	TranslatedText string    `json:"translated_text" bigquery:"translated_text"`
	CreatedAt      time.Time `json:"created_at" bigquery:"created_at"`
}

// NewTranslation builds a translation of the segment with a fresh id.
func NewTranslation(segment *AudioSegment, response *TranslatorResponse) *Translation {
	return &Translation{
		ID:             uuid.NewString(),
		VideoID:        segment.Request.VideoID,
		FromSeconds:    segment.FromSeconds,
		ToSeconds:      segment.ToSeconds,
		FromLanguage:   segment.Request.FromLanguage,
		ToLanguage:     segment.Request.ToLanguage,
		OriginalText:   response.OriginalText,
		TranslatedText: response.TranslatedText,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// TranslatorResponse is the JSON document the translator model must answer with.
type TranslatorResponse struct {
	OriginalText   string `json:"original"`
	TranslatedText string `json:"translated"`
}
