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
	"log/slog"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// VideoDownload fetches the input video's URL into the videos directory. The
// video is stored under ParamVideo and the written path under ParamVideoPath.
type VideoDownload struct {
	cor.BaseCommand
	downloader model.VideoDownloader
	layout     model.StorageLayout
}

func NewVideoDownload(name string, downloader model.VideoDownloader, layout model.StorageLayout) *VideoDownload {
	return &VideoDownload{BaseCommand: *cor.NewBaseCommand(name), downloader: downloader, layout: layout}
}

func (v *VideoDownload) IsExecutable(context cor.Context) bool {
	if !v.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(v.GetInputParam()).(*model.Video)
	return ok
}

func (v *VideoDownload) Execute(context cor.Context) {
	video := context.Get(v.GetInputParam()).(*model.Video)
	context.Add(ParamVideo, video)

	path, err := v.downloader.DownloadVideo(context.GetContext(), video.OriginalURL, v.layout.VideosDir(), video.ID, video.VideoType)
	if err != nil {
		v.Fail(context, err)
		return
	}
	context.Add(ParamVideoPath, path)
	slog.InfoContext(context.GetContext(), "video downloaded", "id", video.ID, "path", path)
	v.Succeed(context, video)
}
