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

package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// FakeDownloader writes Content to the target path instead of fetching url.
type FakeDownloader struct {
	Content []byte
	Err     error

	mu   sync.Mutex
	URLs []string
}

func (d *FakeDownloader) DownloadVideo(_ context.Context, url string, dir string, id string, videoType model.VideoType) (string, error) {
	d.mu.Lock()
	d.URLs = append(d.URLs, url)
	d.mu.Unlock()

	if d.Err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrVideoDownload, url, d.Err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, id+"."+videoType.Extension())
	content := d.Content
	if content == nil {
		content = MP4Header
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// AudioCall records the arguments of one ExtractAudio call.
type AudioCall struct {
	Path        string
	FromSeconds float64
	ToSeconds   float64
}

// FakeMedia reports Metadata for every file and returns Audio for every clip.
type FakeMedia struct {
	Metadata   model.VideoMetadata
	Audio      []byte
	ProbeErr   error
	ExtractErr error
	ThumbErr   error

	mu         sync.Mutex
	AudioCalls []AudioCall
	Thumbnails []string
}

func (m *FakeMedia) Probe(_ context.Context, path string) (*model.VideoMetadata, error) {
	if m.ProbeErr != nil {
		return nil, m.ProbeErr
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	metadata := m.Metadata
	return &metadata, nil
}

func (m *FakeMedia) ExtractAudio(_ context.Context, path string, fromSeconds float64, toSeconds float64) ([]byte, error) {
	m.mu.Lock()
	m.AudioCalls = append(m.AudioCalls, AudioCall{Path: path, FromSeconds: fromSeconds, ToSeconds: toSeconds})
	m.mu.Unlock()
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	if m.Audio == nil {
		return []byte("RIFF"), nil
	}
	return m.Audio, nil
}

func (m *FakeMedia) Thumbnail(_ context.Context, path string, out string) error {
	m.mu.Lock()
	m.Thumbnails = append(m.Thumbnails, out)
	m.mu.Unlock()
	if m.ThumbErr != nil {
		return m.ThumbErr
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return os.WriteFile(out, []byte("\x89PNG\r\n\x1a\n"), 0o644)
}

// LastAudioCall returns the most recent ExtractAudio call.
func (m *FakeMedia) LastAudioCall() (AudioCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.AudioCalls) == 0 {
		return AudioCall{}, false
	}
	return m.AudioCalls[len(m.AudioCalls)-1], true
}

// FakeTranslator echoes the languages it was called with.
type FakeTranslator struct {
	Response *model.TranslatorResponse
	Err      error
}

func (f *FakeTranslator) Translate(_ context.Context, _ []byte, from model.Language, to model.Language) (*model.TranslatorResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Response != nil {
		return f.Response, nil
	}
	return &model.TranslatorResponse{
		OriginalText:   "text in " + from.String(),
		TranslatedText: "text in " + to.String(),
	}, nil
}

// FakeSpeech returns PCM, or an error.
type FakeSpeech struct {
	PCM []byte
	Err error

	Texts []string
}

func (f *FakeSpeech) TextToSpeech(_ context.Context, text string, _ model.Language) ([]byte, error) {
	f.Texts = append(f.Texts, text)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PCM, nil
}

// FakeOCR returns Text for every image.
type FakeOCR struct {
	Text string
	Err  error
}

func (f *FakeOCR) GenerateOCR(_ context.Context, _ []byte) (string, error) {
	return f.Text, f.Err
}

// FakeArchiver remembers what it archived.
type FakeArchiver struct {
	Err error

	mu       sync.Mutex
	Archived map[string]string // object name -> local path
}

func (a *FakeArchiver) Archive(_ context.Context, localPath string, objectName string) (string, error) {
	if a.Err != nil {
		return "", a.Err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Archived == nil {
		a.Archived = make(map[string]string)
	}
	a.Archived[objectName] = localPath
	return "mem://archive/" + objectName, nil
}

func (a *FakeArchiver) SignedURL(_ context.Context, objectName string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://archive.example.com/%s?ttl=%d", objectName, int(ttl.Seconds())), nil
}

// FakeExporter remembers what it exported.
type FakeExporter struct {
	Err error

	mu       sync.Mutex
	Exported []*model.Translation
}

func (e *FakeExporter) Export(_ context.Context, translation *model.Translation) error {
	if e.Err != nil {
		return e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Exported = append(e.Exported, translation)
	return nil
}
