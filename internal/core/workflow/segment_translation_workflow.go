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

package workflow

import (
	"github.com/RichNachos/tower-of-babel-video/internal/core/commands"
	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// SegmentTranslationDeps are the collaborators of the translation workflow.
// Exporter is optional.
type SegmentTranslationDeps struct {
	Extractor    commands.SegmentExtractor
	Translator   model.Translator
	Translations model.TranslationRepository
	Exporter     model.TranslationExporter
}

// SegmentTranslationWorkflow clips, translates, assembles, persists and
// optionally exports one audio segment. The input is a *model.SegmentRequest
// and the result is left under commands.ParamTranslation.
type SegmentTranslationWorkflow struct {
	cor.BaseCommand
	deps  SegmentTranslationDeps
	chain cor.Chain
}

func NewSegmentTranslationWorkflow(deps SegmentTranslationDeps) *SegmentTranslationWorkflow {
	out := &SegmentTranslationWorkflow{
		BaseCommand: *cor.NewBaseCommand("segment-translation-workflow"),
		deps:        deps,
	}
	out.initializeChain()
	return out
}

func (w *SegmentTranslationWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewAudioSegmentExtract("audio-segment-extract", w.deps.Extractor))
	out.AddCommand(commands.NewAudioSegmentTranslate("audio-segment-translate", w.deps.Translator))
	out.AddCommand(commands.NewTranslationAssemble("translation-assemble"))
	out.AddCommand(commands.NewTranslationPersist("translation-persist", w.deps.Translations))
	if w.deps.Exporter != nil {
		out.AddCommand(commands.NewTranslationExport("translation-export", w.deps.Exporter))
	}
	w.chain = out
}

func (w *SegmentTranslationWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *SegmentTranslationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
