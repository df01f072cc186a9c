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
	"os"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// VideoThumbnail writes the first frame of the video as a PNG.
type VideoThumbnail struct {
	cor.BaseCommand
	media  model.MediaProcessor
	layout model.StorageLayout
}

func NewVideoThumbnail(name string, media model.MediaProcessor, layout model.StorageLayout) *VideoThumbnail {
	return &VideoThumbnail{BaseCommand: *cor.NewBaseCommand(name), media: media, layout: layout}
}

func (v *VideoThumbnail) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		context.Get(ParamVideo) != nil && context.Get(ParamVideoPath) != nil
}

func (v *VideoThumbnail) Execute(context cor.Context) {
	video := context.Get(ParamVideo).(*model.Video)
	path := context.Get(ParamVideoPath).(string)

	if err := os.MkdirAll(v.layout.ThumbnailsDir(), 0o755); err != nil {
		v.Fail(context, fmt.Errorf("create thumbnails directory: %w", err))
		return
	}
	out := v.layout.ThumbnailPath(video.ID)
	if err := v.media.Thumbnail(context.GetContext(), path, out); err != nil {
		v.Fail(context, fmt.Errorf("thumbnail for video %s: %w", video.ID, err))
		return
	}
	context.Add(ParamThumbnailPath, out)
	v.Succeed(context, nil)
}
