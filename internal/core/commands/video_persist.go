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

// VideoPersist inserts the video row.
type VideoPersist struct {
	cor.BaseCommand
	videos model.VideoRepository
}

func NewVideoPersist(name string, videos model.VideoRepository) *VideoPersist {
	return &VideoPersist{BaseCommand: *cor.NewBaseCommand(name), videos: videos}
}

func (v *VideoPersist) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ParamVideo) != nil
}

func (v *VideoPersist) Execute(context cor.Context) {
	video := context.Get(ParamVideo).(*model.Video)
	if err := v.videos.Create(context.GetContext(), video); err != nil {
		v.Fail(context, fmt.Errorf("persist video %s: %w", video.ID, err))
		return
	}
	slog.InfoContext(context.GetContext(), "video persisted", "id", video.ID, "url", video.OriginalURL)
	v.Succeed(context, video)
}
