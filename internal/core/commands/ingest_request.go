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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// IngestRequestReader parses a Pub/Sub message body, {"video_url": "..."},
// into a *model.IngestRequest.
type IngestRequestReader struct {
	cor.BaseCommand
}

func NewIngestRequestReader(name string) *IngestRequestReader {
	return &IngestRequestReader{BaseCommand: *cor.NewBaseCommand(name)}
}

func (r *IngestRequestReader) Execute(context cor.Context) {
	msg, ok := context.Get(r.GetInputParam()).(string)
	if !ok {
		r.Fail(context, fmt.Errorf("%w: must be a string, got %T", model.ErrInvalidIngestMessage, context.Get(r.GetInputParam())))
		return
	}
	var request model.IngestRequest
	if err := json.Unmarshal([]byte(msg), &request); err != nil {
		r.Fail(context, fmt.Errorf("%w: %w", model.ErrInvalidIngestMessage, err))
		return
	}
	request.VideoURL = strings.TrimSpace(request.VideoURL)
	if request.VideoURL == "" {
		r.Fail(context, fmt.Errorf("%w: no video_url", model.ErrInvalidIngestMessage))
		return
	}
	r.Succeed(context, &request)
}

// VideoAdder registers a video from a URL.
type VideoAdder interface {
	AddVideo(ctx context.Context, url string) (*model.Video, error)
}

// VideoAdd registers the video of the input *model.IngestRequest.
type VideoAdd struct {
	cor.BaseCommand
	adder VideoAdder
}

func NewVideoAdd(name string, adder VideoAdder) *VideoAdd {
	return &VideoAdd{BaseCommand: *cor.NewBaseCommand(name), adder: adder}
}

func (v *VideoAdd) IsExecutable(context cor.Context) bool {
	if !v.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(v.GetInputParam()).(*model.IngestRequest)
	return ok
}

func (v *VideoAdd) Execute(context cor.Context) {
	request := context.Get(v.GetInputParam()).(*model.IngestRequest)
	video, err := v.adder.AddVideo(context.GetContext(), request.VideoURL)
	if err != nil {
		v.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "video ingested from message", "id", video.ID, "url", video.OriginalURL)
	v.Succeed(context, video)
}
