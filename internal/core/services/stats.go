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

package services

import (
	"context"
	"errors"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// Stats summarises the stored videos and translations.
type Stats struct {
	Videos        int            `json:"videos"`
	Translations  int            `json:"translations"`
	LanguagePairs map[string]int `json:"language_pairs"`
	LastVideoAt   *time.Time     `json:"last_video_at"`
}

type StatsService struct {
	Videos       model.VideoRepository
	Translations model.TranslationRepository
}

// Stats counts videos and translations. Language pairs are keyed
// "{from}->{to}" by ISO code, e.g. "EN->ES".
func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	videos, err := s.Videos.List(ctx)
	if err != nil {
		return nil, err
	}
	translations, err := s.Translations.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Stats{
		Videos:        len(videos),
		Translations:  len(translations),
		LanguagePairs: make(map[string]int),
	}
	for _, t := range translations {
		out.LanguagePairs[t.FromLanguage.Code()+"->"+t.ToLanguage.Code()]++
	}

	last, err := s.Videos.Latest(ctx)
	switch {
	case errors.Is(err, model.ErrNoVideos):
	case err != nil:
		return nil, err
	default:
		out.LastVideoAt = &last.CreatedAt
	}
	return out, nil
}
