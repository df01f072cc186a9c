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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/h2non/filetype"
)

// headerSize is the number of bytes filetype needs to recognise any type.
const headerSize = 261

// VideoTypeCheck sniffs the downloaded file and rejects anything that is not
// a video container. A rejected file is removed.
type VideoTypeCheck struct {
	cor.BaseCommand
}

func NewVideoTypeCheck(name string) *VideoTypeCheck {
	return &VideoTypeCheck{BaseCommand: *cor.NewBaseCommand(name)}
}

func (v *VideoTypeCheck) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ParamVideoPath) != nil
}

func (v *VideoTypeCheck) Execute(context cor.Context) {
	path := context.Get(ParamVideoPath).(string)

	head, err := readHeader(path)
	if err != nil {
		v.Fail(context, fmt.Errorf("%w: %w", model.ErrVideoDownload, err))
		return
	}
	if !filetype.IsVideo(head) {
		kind, _ := filetype.Match(head)
		slog.WarnContext(context.GetContext(), "downloaded file is not a video", "path", path, "mime", kind.MIME.Value)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(context.GetContext(), "failed to remove rejected file", "path", path, "error", err)
		}
		context.Remove(ParamVideoPath)
		v.Fail(context, fmt.Errorf("%w: %s", model.ErrNotAVideo, path))
		return
	}
	v.Succeed(context, nil)
}

func readHeader(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}
