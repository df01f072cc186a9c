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

package model

import (
	"path/filepath"
)

// SegmentRequest asks for the audio between two offsets of a video to be
// translated between two languages.
type SegmentRequest struct {
	VideoID      string
	VideoType    VideoType
	FromSeconds  float64
	ToSeconds    float64
	FromLanguage Language
	ToLanguage   Language
}

// AudioSegment is a clipped WAV plus the range that was actually clipped,
// which may be shorter than the requested one.
type AudioSegment struct {
	Request     *SegmentRequest
	Data        []byte
	FromSeconds float64
	ToSeconds   float64
}

// StorageLayout maps ids to paths under the data directory.
type StorageLayout struct {
	DataDir string
}

func (l StorageLayout) VideosDir() string {
	return filepath.Join(l.DataDir, "videos")
}

func (l StorageLayout) ThumbnailsDir() string {
	return filepath.Join(l.DataDir, "thumbnails")
}

// VideoPath is {DataDir}/videos/{id}.{ext}.
func (l StorageLayout) VideoPath(id string, videoType VideoType) string {
	return filepath.Join(l.VideosDir(), id+"."+videoType.Extension())
}

// ThumbnailPath is {DataDir}/thumbnails/{id}.png.
func (l StorageLayout) ThumbnailPath(id string) string {
	return filepath.Join(l.ThumbnailsDir(), id+".png")
}

// VideoObjectName and ThumbnailObjectName are the archive keys of a video.
func VideoObjectName(id string, videoType VideoType) string {
	return "videos/" + id + "." + videoType.Extension()
}

func ThumbnailObjectName(id string) string {
	return "thumbnails/" + id + ".png"
}
