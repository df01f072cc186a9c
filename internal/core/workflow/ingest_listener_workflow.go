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
)

// IngestListenerWorkflow handles one ingest message: it reads the video URL
// from the message body and registers the video.
type IngestListenerWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

func NewIngestListenerWorkflow(adder commands.VideoAdder) *IngestListenerWorkflow {
	chain := cor.NewBaseChain("ingest-listener-workflow")
	chain.AddCommand(commands.NewIngestRequestReader("ingest-request-reader"))
	chain.AddCommand(commands.NewVideoAdd("video-add", adder))
	return &IngestListenerWorkflow{
		BaseCommand: *cor.NewBaseCommand("ingest-listener-workflow"),
		chain:       chain,
	}
}

func (w *IngestListenerWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *IngestListenerWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
