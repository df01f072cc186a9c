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
	"fmt"
	"log/slog"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// TranslationAssemble combines the clipped segment and the translator
// response into a Translation, stored under ParamTranslation.
type TranslationAssemble struct {
	cor.BaseCommand
}

func NewTranslationAssemble(name string) *TranslationAssemble {
	return &TranslationAssemble{BaseCommand: *cor.NewBaseCommand(name)}
}

func (t *TranslationAssemble) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		context.Get(ParamAudioSegment) != nil && context.Get(ParamTranslatorResponse) != nil
}

func (t *TranslationAssemble) Execute(context cor.Context) {
	segment := context.Get(ParamAudioSegment).(*model.AudioSegment)
	response := context.Get(ParamTranslatorResponse).(*model.TranslatorResponse)

	translation := model.NewTranslation(segment, response)
	context.Add(ParamTranslation, translation)
	t.Succeed(context, translation)
}

// TranslationPersist inserts the translation row.
type TranslationPersist struct {
	cor.BaseCommand
	translations model.TranslationRepository
}

func NewTranslationPersist(name string, translations model.TranslationRepository) *TranslationPersist {
	return &TranslationPersist{BaseCommand: *cor.NewBaseCommand(name), translations: translations}
}

func (t *TranslationPersist) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ParamTranslation) != nil
}

func (t *TranslationPersist) Execute(context cor.Context) {
	translation := context.Get(ParamTranslation).(*model.Translation)
	if err := t.translations.Create(context.GetContext(), translation); err != nil {
		t.Fail(context, fmt.Errorf("persist translation %s: %w", translation.ID, err))
		return
	}
	slog.InfoContext(context.GetContext(), "translation persisted",
		"id", translation.ID, "video", translation.VideoID, "from", translation.FromLanguage, "to", translation.ToLanguage)
	t.Succeed(context, translation)
}

// TranslationExport streams the persisted translation to the analytics store.
type TranslationExport struct {
	cor.BaseCommand
	exporter model.TranslationExporter
}

func NewTranslationExport(name string, exporter model.TranslationExporter) *TranslationExport {
	return &TranslationExport{BaseCommand: *cor.NewBaseCommand(name), exporter: exporter}
}

func (t *TranslationExport) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ParamTranslation) != nil
}

func (t *TranslationExport) Execute(context cor.Context) {
	translation := context.Get(ParamTranslation).(*model.Translation)
	if err := t.exporter.Export(context.GetContext(), translation); err != nil {
		t.Fail(context, err)
		return
	}
	t.Succeed(context, translation)
}
