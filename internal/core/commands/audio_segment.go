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

package commands

import (
	"context"
	"log/slog"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// SegmentExtractor clips audio out of a stored video. The returned segment
// carries the clamped range.
type SegmentExtractor interface {
	ExtractAudioSegment(ctx context.Context, id string, videoType model.VideoType, fromSeconds float64, toSeconds float64) (*model.AudioSegment, error)
}

// AudioSegmentExtract turns the input *model.SegmentRequest into a WAV clip.
type AudioSegmentExtract struct {
	cor.BaseCommand
	extractor SegmentExtractor
}

func NewAudioSegmentExtract(name string, extractor SegmentExtractor) *AudioSegmentExtract {
	return &AudioSegmentExtract{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor}
}

func (a *AudioSegmentExtract) IsExecutable(context cor.Context) bool {
	if !a.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(a.GetInputParam()).(*model.SegmentRequest)
	return ok
}

func (a *AudioSegmentExtract) Execute(context cor.Context) {
	request := context.Get(a.GetInputParam()).(*model.SegmentRequest)
	context.Add(ParamSegmentRequest, request)

	segment, err := a.extractor.ExtractAudioSegment(context.GetContext(), request.VideoID, request.VideoType, request.FromSeconds, request.ToSeconds)
	if err != nil {
		a.Fail(context, err)
		return
	}
	segment.Request = request
	context.Add(ParamAudioSegment, segment)
	slog.DebugContext(context.GetContext(), "audio segment extracted",
		"video", request.VideoID, "from", segment.FromSeconds, "to", segment.ToSeconds, "bytes", len(segment.Data))
	a.Succeed(context, segment)
}

// AudioSegmentTranslate sends the clip to the translator.
type AudioSegmentTranslate struct {
	cor.BaseCommand
	translator model.Translator
}

func NewAudioSegmentTranslate(name string, translator model.Translator) *AudioSegmentTranslate {
	return &AudioSegmentTranslate{BaseCommand: *cor.NewBaseCommand(name), translator: translator}
}

func (a *AudioSegmentTranslate) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ParamAudioSegment) != nil
}

func (a *AudioSegmentTranslate) Execute(context cor.Context) {
	segment := context.Get(ParamAudioSegment).(*model.AudioSegment)

	response, err := a.translator.Translate(context.GetContext(), segment.Data, segment.Request.FromLanguage, segment.Request.ToLanguage)
	if err != nil {
		a.Fail(context, err)
		return
	}
	context.Add(ParamTranslatorResponse, response)
	a.Succeed(context, response)
}
