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

package services_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
	"github.com/RichNachos/tower-of-babel-video/internal/persistence"
	test "github.com/RichNachos/tower-of-babel-video/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"
)

type fixture struct {
	store        *persistence.MemoryStore
	downloader   *test.FakeDownloader
	media        *test.FakeMedia
	translator   *test.FakeTranslator
	speech       *test.FakeSpeech
	archiver     *test.FakeArchiver
	exporter     *test.FakeExporter
	layout       model.StorageLayout
	videos       *services.VideoService
	translations *services.TranslationService
}

type option func(*fixture)

func withArchive(f *fixture) {
	f.archiver = &test.FakeArchiver{}
}

func withExport(f *fixture) {
	f.exporter = &test.FakeExporter{}
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()
	f := &fixture{
		store:      persistence.NewMemoryStore(),
		downloader: &test.FakeDownloader{},
		media:      &test.FakeMedia{Metadata: model.VideoMetadata{DurationSeconds: 10, Width: 64, Height: 48}},
		translator: &test.FakeTranslator{},
		speech:     &test.FakeSpeech{PCM: []byte{1, 2, 3, 4}},
		layout:     model.StorageLayout{DataDir: t.TempDir()},
	}
	for _, opt := range opts {
		opt(f)
	}

	deps := services.VideoServiceDeps{
		Videos:     f.store.Videos(),
		Downloader: f.downloader,
		Media:      f.media,
		OCR:        &test.FakeOCR{Text: "HELLO"},
		Layout:     f.layout,
	}
	if f.archiver != nil {
		deps.Archiver = f.archiver
	}
	f.videos = services.NewVideoService(deps)

	tdeps := services.TranslationServiceDeps{
		Translations: f.store.Translations(),
		Videos:       f.videos,
		Translator:   f.translator,
		Speech:       f.speech,
	}
	if f.exporter != nil {
		tdeps.Exporter = f.exporter
	}
	f.translations = services.NewTranslationService(tdeps)
	return f
}

func (f *fixture) addVideo(t *testing.T) *model.Video {
	t.Helper()
	video, err := f.videos.AddVideo(context.Background(), "https://example.com/video.mp4")
	require.NoError(t, err)
	return video
}

func TestAddVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	video, err := f.videos.AddVideo(ctx, "https://example.com/video.mp4")
	assert.NoError(t, err)
	assert.NotNil(t, video)
	assert.Equal(t, video.OriginalURL, "https://example.com/video.mp4")
	assert.Equal(t, video.VideoType, model.VideoTypeMP4)

	require.FileExists(t, f.layout.VideoPath(video.ID, video.VideoType))
	require.FileExists(t, f.layout.ThumbnailPath(video.ID))

	stored, err := f.videos.GetVideo(ctx, video.ID)
	assert.NoError(t, err)
	assert.Equal(t, stored.ID, video.ID)
}

func TestAddVideoArchivesFiles(t *testing.T) {
	f := newFixture(t, withArchive)
	video := f.addVideo(t)

	require.Contains(t, f.archiver.Archived, model.VideoObjectName(video.ID, video.VideoType))
	require.Contains(t, f.archiver.Archived, model.ThumbnailObjectName(video.ID))

	url, err := f.videos.ArchiveURL(context.Background(), video.ID, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "https://archive.example.com/videos/"+video.ID+".mp4?ttl=60", url)
}

func TestAddVideoDownloadFailure(t *testing.T) {
	f := newFixture(t)
	f.downloader.Err = errors.New("connection refused")

	_, err := f.videos.AddVideo(context.Background(), "https://example.com/missing.mp4")
	require.ErrorIs(t, err, model.ErrVideoDownload)

	videos, err := f.videos.GetVideos(context.Background())
	require.NoError(t, err)
	require.Empty(t, videos)
}

func TestAddVideoRejectsNonVideo(t *testing.T) {
	f := newFixture(t)
	f.downloader.Content = []byte("<html><body>not a video</body></html>")

	_, err := f.videos.AddVideo(context.Background(), "https://example.com/page.html")
	require.ErrorIs(t, err, model.ErrNotAVideo)

	entries, err := os.ReadDir(f.layout.VideosDir())
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = f.videos.GetLastVideo(context.Background())
	require.ErrorIs(t, err, model.ErrNoVideos)
}

func TestAddVideoRemovesFilesWhenThumbnailFails(t *testing.T) {
	f := newFixture(t)
	f.media.ThumbErr = errors.New("ffmpeg exploded")

	_, err := f.videos.AddVideo(context.Background(), "https://example.com/video.mp4")
	require.Error(t, err)

	entries, err := os.ReadDir(f.layout.VideosDir())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAddVideoRemovesFilesWhenArchiveFails(t *testing.T) {
	f := newFixture(t, withArchive)
	f.archiver.Err = errors.New("bucket gone")

	_, err := f.videos.AddVideo(context.Background(), "https://example.com/video.mp4")
	require.Error(t, err)

	videos, err := f.videos.GetVideos(context.Background())
	require.NoError(t, err)
	require.Empty(t, videos)
	entries, err := os.ReadDir(f.layout.ThumbnailsDir())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestGetVideoNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.videos.GetVideo(context.Background(), "nope")
	require.ErrorIs(t, err, model.ErrVideoNotFound)
}

func TestGetLastVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.videos.GetLastVideo(ctx)
	require.ErrorIs(t, err, model.ErrNoVideos)

	f.addVideo(t)
	second := f.addVideo(t)

	last, err := f.videos.GetLastVideo(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, second.ID)
}

func TestExtractVideoMetadata(t *testing.T) {
	f := newFixture(t)
	video := f.addVideo(t)

	metadata, err := f.videos.ExtractVideoMetadata(context.Background(), video.ID, video.VideoType)
	require.NoError(t, err)
	assert.Equal(t, metadata.DurationSeconds, 10.0)
	assert.Equal(t, metadata.Width, 64)

	_, err = f.videos.ExtractVideoMetadata(context.Background(), "missing", model.VideoTypeMP4)
	require.ErrorIs(t, err, model.ErrVideoNotFound)
}

func TestExtractAudioSegment(t *testing.T) {
	f := newFixture(t)
	video := f.addVideo(t)
	ctx := context.Background()

	t.Run("within duration", func(t *testing.T) {
		segment, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, segment.FromSeconds, 1.0)
		assert.Equal(t, segment.ToSeconds, 3.0)
		assert.Equal(t, string(segment.Data), "RIFF")
	})

	t.Run("clamped to duration", func(t *testing.T) {
		segment, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 8, 30)
		require.NoError(t, err)
		assert.Equal(t, segment.ToSeconds, 10.0)
		call, ok := f.media.LastAudioCall()
		require.True(t, ok)
		assert.Equal(t, call.ToSeconds, 10.0)
	})

	t.Run("empty range without clamping reaches ffmpeg", func(t *testing.T) {
		_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 4, 4)
		require.NoError(t, err)
	})

	t.Run("negative start", func(t *testing.T) {
		_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, -1, 3)
		require.ErrorIs(t, err, model.ErrInvalidSegment)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 5, 2)
		require.ErrorIs(t, err, model.ErrInvalidSegment)
	})

	t.Run("NaN bounds", func(t *testing.T) {
		calls := len(f.media.AudioCalls)
		for _, bounds := range [][2]float64{{math.NaN(), 5}, {1, math.NaN()}, {math.NaN(), math.NaN()}} {
			_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, bounds[0], bounds[1])
			require.ErrorIs(t, err, model.ErrInvalidSegment)
		}
		assert.Equal(t, len(f.media.AudioCalls), calls)
	})

	t.Run("start beyond duration", func(t *testing.T) {
		_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 12, 20)
		require.ErrorIs(t, err, model.ErrSegmentBeyondDuration)
		require.Contains(t, err.Error(), "start 12s, duration 10s")
	})

	t.Run("start at duration", func(t *testing.T) {
		_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 10, 11)
		require.ErrorIs(t, err, model.ErrSegmentBeyondDuration)
	})

	t.Run("missing file is checked before the range", func(t *testing.T) {
		_, err := f.videos.ExtractAudioSegment(ctx, "missing", model.VideoTypeMP4, -1, -2)
		require.ErrorIs(t, err, model.ErrVideoNotFound)
	})

	t.Run("ffmpeg failure", func(t *testing.T) {
		f.media.ExtractErr = errors.New("boom")
		defer func() { f.media.ExtractErr = nil }()
		_, err := f.videos.ExtractAudioSegment(ctx, video.ID, video.VideoType, 1, 2)
		require.ErrorIs(t, err, model.ErrAudioExtraction)
	})
}

func TestThumbnailIsRegenerated(t *testing.T) {
	f := newFixture(t)
	video := f.addVideo(t)
	path := f.layout.ThumbnailPath(video.ID)
	require.NoError(t, os.Remove(path))

	got, err := f.videos.Thumbnail(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, got, path)
	require.FileExists(t, path)

	text, err := f.videos.OCRThumbnail(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, text, "HELLO")
}

func TestArchiveURLDisabled(t *testing.T) {
	f := newFixture(t)
	video := f.addVideo(t)
	_, err := f.videos.ArchiveURL(context.Background(), video.ID, 0)
	require.ErrorIs(t, err, model.ErrArchiveDisabled)
}

func TestTranslateAudioSegment(t *testing.T) {
	f := newFixture(t, withExport)
	video := f.addVideo(t)
	ctx := context.Background()

	translation, err := f.translations.TranslateAudioSegment(ctx, model.SegmentRequest{
		VideoID:      video.ID,
		FromSeconds:  2,
		ToSeconds:    25,
		FromLanguage: model.English,
		ToLanguage:   model.Spanish,
	})
	require.NoError(t, err)
	assert.Equal(t, translation.VideoID, video.ID)
	assert.Equal(t, translation.FromSeconds, 2.0)
	assert.Equal(t, translation.ToSeconds, 10.0)
	assert.Equal(t, translation.OriginalText, "text in English")
	assert.Equal(t, translation.TranslatedText, "text in Spanish")

	stored, err := f.translations.GetTranslation(ctx, translation.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, translation.ID)

	byVideo, err := f.translations.GetTranslationsByVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, byVideo, 1)

	require.Len(t, f.exporter.Exported, 1)
	assert.Equal(t, f.exporter.Exported[0].ID, translation.ID)
}

func TestTranslateAudioSegmentErrors(t *testing.T) {
	f := newFixture(t)
	video := f.addVideo(t)
	ctx := context.Background()

	_, err := f.translations.TranslateAudioSegment(ctx, model.SegmentRequest{VideoID: "missing", ToSeconds: 1})
	require.ErrorIs(t, err, model.ErrVideoNotFound)

	_, err = f.translations.TranslateAudioSegment(ctx, model.SegmentRequest{VideoID: video.ID, FromSeconds: 3, ToSeconds: 1})
	require.ErrorIs(t, err, model.ErrInvalidSegment)

	f.translator.Err = model.ErrTranslator
	_, err = f.translations.TranslateAudioSegment(ctx, model.SegmentRequest{VideoID: video.ID, ToSeconds: 1})
	require.ErrorIs(t, err, model.ErrTranslator)

	all, err := f.translations.GetTranslations(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestGetTranslationNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.translations.GetTranslation(context.Background(), "nope")
	require.ErrorIs(t, err, model.ErrTranslationNotFound)

	byVideo, err := f.translations.GetTranslationsByVideo(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, byVideo)
}

func TestSpeakTranslation(t *testing.T) {
	f := newFixture(t)
	video := f.addVideo(t)
	ctx := context.Background()

	translation, err := f.translations.TranslateAudioSegment(ctx, model.SegmentRequest{
		VideoID: video.ID, ToSeconds: 1, FromLanguage: model.Spanish, ToLanguage: model.English,
	})
	require.NoError(t, err)

	wav, err := f.translations.SpeakTranslation(ctx, translation.ID)
	require.NoError(t, err)
	require.Len(t, wav, 44+4)
	assert.Equal(t, string(wav[0:4]), "RIFF")
	assert.Equal(t, binary.LittleEndian.Uint32(wav[24:28]), uint32(24000))
	require.Equal(t, []string{"text in English"}, f.speech.Texts)

	_, err = f.translations.SpeakTranslation(ctx, "nope")
	require.ErrorIs(t, err, model.ErrTranslationNotFound)

	f.speech.Err = model.ErrTTS
	_, err = f.translations.SpeakTranslation(ctx, translation.ID)
	require.ErrorIs(t, err, model.ErrTTS)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stats := &services.StatsService{Videos: f.store.Videos(), Translations: f.store.Translations()}

	empty, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, empty.Videos, 0)
	require.Nil(t, empty.LastVideoAt)

	video := f.addVideo(t)
	for _, to := range []model.Language{model.Spanish, model.Spanish, model.English} {
		_, err := f.translations.TranslateAudioSegment(ctx, model.SegmentRequest{
			VideoID: video.ID, ToSeconds: 1, FromLanguage: model.English, ToLanguage: to,
		})
		require.NoError(t, err)
	}

	got, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, got.Videos, 1)
	assert.Equal(t, got.Translations, 3)
	require.Equal(t, map[string]int{"EN->ES": 2, "EN->EN": 1}, got.LanguagePairs)
	require.NotNil(t, got.LastVideoAt)
	require.True(t, got.LastVideoAt.Equal(video.CreatedAt))
}
