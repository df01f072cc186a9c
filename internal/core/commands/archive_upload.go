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
	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// ArchiveUpload copies the video, and its thumbnail when there is one, to the
// archive. The resulting URIs are stored under ParamArchiveURIs.
type ArchiveUpload struct {
	cor.BaseCommand
	archiver model.Archiver
}

func NewArchiveUpload(name string, archiver model.Archiver) *ArchiveUpload {
	return &ArchiveUpload{BaseCommand: *cor.NewBaseCommand(name), archiver: archiver}
}

func (a *ArchiveUpload) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		context.Get(ParamVideo) != nil && context.Get(ParamVideoPath) != nil
}

func (a *ArchiveUpload) Execute(context cor.Context) {
	video := context.Get(ParamVideo).(*model.Video)

	uploads := [][2]string{
		{context.Get(ParamVideoPath).(string), model.VideoObjectName(video.ID, video.VideoType)},
	}
	if thumbnail, ok := context.Get(ParamThumbnailPath).(string); ok {
		uploads = append(uploads, [2]string{thumbnail, model.ThumbnailObjectName(video.ID)})
	}

	uris := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		uri, err := a.archiver.Archive(context.GetContext(), upload[0], upload[1])
		if err != nil {
			a.Fail(context, err)
			return
		}
		uris = append(uris, uri)
	}
	context.Add(ParamArchiveURIs, uris)
	a.Succeed(context, nil)
}
