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

package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// MemoryStore keeps rows in process memory, in insertion order. Returned
// values are copies, so callers may modify them freely.
type MemoryStore struct {
	mu           sync.RWMutex
	videos       []*model.Video
	videoIndex   map[string]int
	translations []*model.Translation
	transIndex   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		videoIndex: make(map[string]int),
		transIndex: make(map[string]int),
	}
}

func (s *MemoryStore) Videos() model.VideoRepository {
	return memoryVideos{s}
}

func (s *MemoryStore) Translations() model.TranslationRepository {
	return memoryTranslations{s}
}

func (s *MemoryStore) Close() {}

type memoryVideos struct{ s *MemoryStore }

func (r memoryVideos) List(_ context.Context) ([]*model.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.Video, 0, len(r.s.videos))
	for _, v := range r.s.videos {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

func (r memoryVideos) Get(_ context.Context, id string) (*model.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.videoIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrVideoNotFound, id)
	}
	c := *r.s.videos[i]
	return &c, nil
}

// Latest scans from the newest insert, so the last inserted of equal
// timestamps wins.
func (r memoryVideos) Latest(_ context.Context) (*model.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *model.Video
	for i := len(r.s.videos) - 1; i >= 0; i-- {
		v := r.s.videos[i]
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, model.ErrNoVideos
	}
	c := *latest
	return &c, nil
}

func (r memoryVideos) Create(_ context.Context, video *model.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videoIndex[video.ID]; ok {
		return fmt.Errorf("video %s already exists", video.ID)
	}
	c := *video
	r.s.videoIndex[video.ID] = len(r.s.videos)
	r.s.videos = append(r.s.videos, &c)
	return nil
}

type memoryTranslations struct{ s *MemoryStore }

func (r memoryTranslations) List(_ context.Context) ([]*model.Translation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(*model.Translation) bool { return true }), nil
}

func (r memoryTranslations) ListByVideo(_ context.Context, videoID string) ([]*model.Translation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(t *model.Translation) bool { return t.VideoID == videoID }), nil
}

// filter must be called with the read lock held.
func (r memoryTranslations) filter(keep func(*model.Translation) bool) []*model.Translation {
	out := make([]*model.Translation, 0)
	for _, t := range r.s.translations {
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

func (r memoryTranslations) Get(_ context.Context, id string) (*model.Translation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.transIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrTranslationNotFound, id)
	}
	c := *r.s.translations[i]
	return &c, nil
}

func (r memoryTranslations) Create(_ context.Context, translation *model.Translation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videoIndex[translation.VideoID]; !ok {
		return fmt.Errorf("%w: %s", model.ErrVideoNotFound, translation.VideoID)
	}
	if _, ok := r.s.transIndex[translation.ID]; ok {
		return fmt.Errorf("translation %s already exists", translation.ID)
	}
	c := *translation
	r.s.transIndex[translation.ID] = len(r.s.translations)
	r.s.translations = append(r.s.translations, &c)
	return nil
}
