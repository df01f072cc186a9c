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
	"fmt"

	"github.com/RichNachos/tower-of-babel-video/internal/core/commands"
	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/RichNachos/tower-of-babel-video/internal/core/workflow"
	"github.com/RichNachos/tower-of-babel-video/internal/media"
)

// TranslationServiceDeps are the collaborators of TranslationService.
// Exporter is optional.
type TranslationServiceDeps struct {
	Translations model.TranslationRepository
	Videos       *VideoService
	Translator   model.Translator
	Speech       model.SpeechSynthesizer
	Exporter     model.TranslationExporter
}

type TranslationService struct {
	deps      TranslationServiceDeps
	translate cor.Command
}

func NewTranslationService(deps TranslationServiceDeps) *TranslationService {
	return &TranslationService{
		deps: deps,
		translate: workflow.NewSegmentTranslationWorkflow(workflow.SegmentTranslationDeps{
			Extractor:    deps.Videos,
			Translator:   deps.Translator,
			Translations: deps.Translations,
			Exporter:     deps.Exporter,
		}),
	}
}

func (s *TranslationService) GetTranslations(ctx context.Context) ([]*model.Translation, error) {
	return s.deps.Translations.List(ctx)
}

// GetTranslation returns model.ErrTranslationNotFound for an unknown id.
func (s *TranslationService) GetTranslation(ctx context.Context, id string) (*model.Translation, error) {
	return s.deps.Translations.Get(ctx, id)
}

// GetTranslationsByVideo returns an empty list for an unknown video.
func (s *TranslationService) GetTranslationsByVideo(ctx context.Context, videoID string) ([]*model.Translation, error) {
	return s.deps.Translations.ListByVideo(ctx, videoID)
}

// TranslateAudioSegment clips, translates and stores one segment of a
// registered video. An empty VideoType means the type the video was stored
// with.
func (s *TranslationService) TranslateAudioSegment(ctx context.Context, request model.SegmentRequest) (*model.Translation, error) {
	video, err := s.deps.Videos.GetVideo(ctx, request.VideoID)
	if err != nil {
		return nil, err
	}
	if request.VideoType == "" {
		request.VideoType = video.VideoType
	}

	chainCtx := cor.NewBaseContext(ctx)
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, &request)

	s.translate.Execute(chainCtx)
	if err := chainCtx.Err(); err != nil {
		return nil, err
	}
	translation, ok := chainCtx.Get(commands.ParamTranslation).(*model.Translation)
	if !ok {
		return nil, fmt.Errorf("translation workflow finished without a translation")
	}
	return translation, nil
}

// SpeakTranslation synthesizes the translated text in the target language and
// returns it as a WAV file.
func (s *TranslationService) SpeakTranslation(ctx context.Context, id string) ([]byte, error) {
	translation, err := s.GetTranslation(ctx, id)
	if err != nil {
		return nil, err
	}
	pcm, err := s.deps.Speech.TextToSpeech(ctx, translation.TranslatedText, translation.ToLanguage)
	if err != nil {
		return nil, err
	}
	return media.WrapPCM16(pcm, media.SpeechSampleRate, media.SpeechChannels), nil
}
