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

// Package workflow assembles commands into the pipelines the services run.
package workflow

import (
	"github.com/RichNachos/tower-of-babel-video/internal/core/commands"
	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// VideoIngestDeps are the collaborators of the ingest workflow. Archiver is
// optional.
type VideoIngestDeps struct {
	Downloader model.VideoDownloader
	Media      model.MediaProcessor
	Videos     model.VideoRepository
	Archiver   model.Archiver
	Layout     model.StorageLayout
}

// VideoIngestWorkflow downloads a video, checks that it is one, writes its
// thumbnail, archives the files when an archive is configured and inserts the
// row. The input is the *model.Video to ingest.
type VideoIngestWorkflow struct {
	cor.BaseCommand
	deps  VideoIngestDeps
	chain cor.Chain
}

func NewVideoIngestWorkflow(deps VideoIngestDeps) *VideoIngestWorkflow {
	out := &VideoIngestWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-ingest-workflow"),
		deps:        deps,
	}
	out.initializeChain()
	return out
}

func (w *VideoIngestWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewVideoDownload("video-download", w.deps.Downloader, w.deps.Layout))
	out.AddCommand(commands.NewVideoTypeCheck("video-type-check"))
	out.AddCommand(commands.NewVideoThumbnail("video-thumbnail", w.deps.Media, w.deps.Layout))
	if w.deps.Archiver != nil {
		out.AddCommand(commands.NewArchiveUpload("video-archive", w.deps.Archiver))
	}
	// Last, so that a failed ingest never leaves a row behind.
	out.AddCommand(commands.NewVideoPersist("video-persist", w.deps.Videos))
	w.chain = out
}

// IsExecutable defers to the chain; the first command checks the input.
func (w *VideoIngestWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *VideoIngestWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
