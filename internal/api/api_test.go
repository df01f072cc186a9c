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

package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RichNachos/tower-of-babel-video/internal/api"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
	"github.com/RichNachos/tower-of-babel-video/internal/persistence"
	test "github.com/RichNachos/tower-of-babel-video/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type APISuite struct {
	suite.Suite
	store      *persistence.MemoryStore
	downloader *test.FakeDownloader
	media      *test.FakeMedia
	archiver   *test.FakeArchiver
	layout     model.StorageLayout
	router     *gin.Engine
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.store = persistence.NewMemoryStore()
	s.downloader = &test.FakeDownloader{}
	s.media = &test.FakeMedia{Metadata: model.VideoMetadata{DurationSeconds: 10, Width: 64, Height: 48}}
	s.archiver = nil
	s.layout = model.StorageLayout{DataDir: s.T().TempDir()}
	s.router = s.newRouter("")
}

func (s *APISuite) newRouter(rootPath string) *gin.Engine {
	deps := services.VideoServiceDeps{
		Videos:     s.store.Videos(),
		Downloader: s.downloader,
		Media:      s.media,
		OCR:        &test.FakeOCR{Text: "HELLO"},
		Layout:     s.layout,
	}
	if s.archiver != nil {
		deps.Archiver = s.archiver
	}
	videos := services.NewVideoService(deps)
	translations := services.NewTranslationService(services.TranslationServiceDeps{
		Translations: s.store.Translations(),
		Videos:       videos,
		Translator:   &test.FakeTranslator{},
		Speech:       &test.FakeSpeech{PCM: []byte{1, 2, 3, 4}},
	})
	stats := &services.StatsService{Videos: s.store.Videos(), Translations: s.store.Translations()}

	return api.NewRouter(api.RouterConfig{ServiceName: "api-test", RootPath: rootPath}, api.Services{
		Videos:       videos,
		Translations: translations,
		Stats:        stats,
	})
}

func (s *APISuite) do(method string, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *APISuite) detail(w *httptest.ResponseRecorder) string {
	var out api.ErrorResponse
	s.decode(w, &out)
	return out.Detail
}

func (s *APISuite) addVideo() api.VideoModel {
	w := s.do(http.MethodPost, "/videos", gin.H{"video_url": "https://example.com/video.mp4"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var out api.VideoModel
	s.decode(w, &out)
	return out
}

func (s *APISuite) translate(videoID string) api.TranslationModel {
	w := s.do(http.MethodPost, "/videos/"+videoID+"/audio-segment/translate", gin.H{
		"from_seconds": 0, "to_seconds": 5, "from_language": "English", "to_language": "es",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var out api.TranslationModel
	s.decode(w, &out)
	return out
}

func (s *APISuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *APISuite) TestEmptyListsRenderAsArrays() {
	w := s.do(http.MethodGet, "/videos", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"videos":[]}`, w.Body.String())

	w = s.do(http.MethodGet, "/translations", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"translations":[]}`, w.Body.String())
}

func (s *APISuite) TestAddAndGetVideo() {
	video := s.addVideo()
	s.NotEmpty(video.ID)
	s.Equal("https://example.com/video.mp4", video.OriginalURL)
	s.Equal(model.VideoTypeMP4, video.VideoType)
	s.Require().NotNil(video.Metadata)
	s.Equal(10.0, video.Metadata.DurationSeconds)

	w := s.do(http.MethodGet, "/videos/"+video.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var got api.VideoModel
	s.decode(w, &got)
	s.Equal(video.ID, got.ID)

	w = s.do(http.MethodGet, "/videos", nil)
	var list api.VideosModel
	s.decode(w, &list)
	s.Len(list.Videos, 1)

	w = s.do(http.MethodGet, "/videos/last", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &got)
	s.Equal(video.ID, got.ID)
}

func (s *APISuite) TestVideoMetadataIsNullWhenProbeFails() {
	video := s.addVideo()
	s.media.ProbeErr = errors.New("ffprobe exploded")

	w := s.do(http.MethodGet, "/videos/"+video.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var raw map[string]any
	s.decode(w, &raw)
	s.Contains(raw, "metadata")
	s.Nil(raw["metadata"])
}

func (s *APISuite) TestAddVideoValidation() {
	for name, body := range map[string]any{
		"missing url": gin.H{},
		"not a url":   gin.H{"video_url": "definitely not a url"},
		"not json":    "[",
	} {
		s.Run(name, func() {
			w := s.do(http.MethodPost, "/videos", body)
			s.Equal(http.StatusBadRequest, w.Code)
			s.NotEmpty(s.detail(w))
		})
	}
	s.Empty(s.downloader.URLs)
}

func (s *APISuite) TestAddVideoDownloadFailure() {
	s.downloader.Err = errors.New("connection refused")
	w := s.do(http.MethodPost, "/videos", gin.H{"video_url": "https://example.com/video.mp4"})
	s.Equal(http.StatusBadGateway, w.Code)
	s.Contains(s.detail(w), model.ErrVideoDownload.Error())
}

func (s *APISuite) TestAddVideoNotAVideo() {
	s.downloader.Content = []byte("<html></html>")
	w := s.do(http.MethodPost, "/videos", gin.H{"video_url": "https://example.com/page.html"})
	s.Equal(http.StatusBadGateway, w.Code)
	s.Contains(s.detail(w), model.ErrNotAVideo.Error())
}

func (s *APISuite) TestNotFound() {
	w := s.do(http.MethodGet, "/videos/last", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(model.ErrNoVideos.Error(), s.detail(w))

	for _, path := range []string{
		"/videos/missing",
		"/videos/missing/audio-segment?from_seconds=0&to_seconds=1",
		"/videos/missing/ocr",
		"/translations/missing",
	} {
		w := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusNotFound, w.Code, path)
	}

	w = s.do(http.MethodPost, "/translations/missing/speech", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestAudioSegment() {
	video := s.addVideo()
	path := "/videos/" + video.ID + "/audio-segment"

	w := s.do(http.MethodGet, path+"?from_seconds=2&to_seconds=30", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("audio/wav", w.Header().Get("Content-Type"))
	s.Equal("2", w.Header().Get("X-Segment-From-Seconds"))
	s.Equal("10", w.Header().Get("X-Segment-To-Seconds"))
	s.Equal("RIFF", w.Body.String())

	call, ok := s.media.LastAudioCall()
	s.Require().True(ok)
	s.Equal(10.0, call.ToSeconds)

	for name, query := range map[string]string{
		"missing bounds":  "",
		"missing to":      "?from_seconds=1",
		"not a number":    "?from_seconds=a&to_seconds=1",
		"reversed range":  "?from_seconds=5&to_seconds=1",
		"negative start":  "?from_seconds=-1&to_seconds=1",
		"NaN start":       "?from_seconds=NaN&to_seconds=1",
		"NaN end":         "?from_seconds=1&to_seconds=NaN",
		"beyond duration": "?from_seconds=20&to_seconds=30",
	} {
		s.Run(name, func() {
			w := s.do(http.MethodGet, path+query, nil)
			s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func (s *APISuite) TestTranslateSegment() {
	video := s.addVideo()
	translation := s.translate(video.ID)

	s.Equal(video.ID, translation.VideoID)
	s.Equal(model.English, translation.FromLanguage)
	s.Equal(model.Spanish, translation.ToLanguage)
	s.Equal("text in Spanish", translation.TranslatedText)
	s.Equal(5.0, translation.ToSeconds)

	w := s.do(http.MethodGet, "/translations/"+translation.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/videos/"+video.ID+"/translations", nil)
	var byVideo api.TranslationsModel
	s.decode(w, &byVideo)
	s.Len(byVideo.Translations, 1)

	w = s.do(http.MethodGet, "/videos/unknown/translations", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"translations":[]}`, w.Body.String())
}

func (s *APISuite) TestTranslateSegmentValidation() {
	video := s.addVideo()
	path := "/videos/" + video.ID + "/audio-segment/translate"

	for name, body := range map[string]gin.H{
		"unknown language": {"from_seconds": 0, "to_seconds": 1, "from_language": "Klingon", "to_language": "Spanish"},
		"missing language": {"from_seconds": 0, "to_seconds": 1, "from_language": "English"},
		"missing bounds":   {"from_language": "English", "to_language": "Spanish"},
		"reversed range":   {"from_seconds": 4, "to_seconds": 1, "from_language": "English", "to_language": "Spanish"},
	} {
		s.Run(name, func() {
			w := s.do(http.MethodPost, path, body)
			s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := s.do(http.MethodPost, "/videos/unknown/audio-segment/translate", gin.H{
		"from_seconds": 0, "to_seconds": 1, "from_language": "English", "to_language": "Spanish",
	})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestSpeech() {
	video := s.addVideo()
	translation := s.translate(video.ID)

	w := s.do(http.MethodPost, "/translations/"+translation.ID+"/speech", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("audio/wav", w.Header().Get("Content-Type"))
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("RIFF")))
}

func (s *APISuite) TestOCR() {
	video := s.addVideo()
	w := s.do(http.MethodGet, "/videos/"+video.ID+"/ocr", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(fmt.Sprintf(`{"video_id":%q,"text":"HELLO"}`, video.ID), w.Body.String())
}

func (s *APISuite) TestArchiveURL() {
	video := s.addVideo()
	w := s.do(http.MethodGet, "/videos/"+video.ID+"/archive-url", nil)
	s.Equal(http.StatusNotImplemented, w.Code)

	s.archiver = &test.FakeArchiver{}
	s.router = s.newRouter("")
	video = s.addVideo()

	w = s.do(http.MethodGet, "/videos/"+video.ID+"/archive-url", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var out api.ArchiveURLModel
	s.decode(w, &out)
	s.Equal("https://archive.example.com/videos/"+video.ID+".mp4?ttl=3600", out.URL)

	w = s.do(http.MethodGet, "/videos/"+video.ID+"/archive-url?ttl_minutes=5", nil)
	s.decode(w, &out)
	s.Equal("https://archive.example.com/videos/"+video.ID+".mp4?ttl=300", out.URL)

	w = s.do(http.MethodGet, "/videos/"+video.ID+"/archive-url?ttl_minutes=10080", nil)
	s.decode(w, &out)
	s.Equal("https://archive.example.com/videos/"+video.ID+".mp4?ttl=604800", out.URL)

	for _, ttl := range []string{"-1", "10081", "9223372036854775807"} {
		w = s.do(http.MethodGet, "/videos/"+video.ID+"/archive-url?ttl_minutes="+ttl, nil)
		s.Equal(http.StatusBadRequest, w.Code, ttl)
	}
}

func (s *APISuite) TestStats() {
	video := s.addVideo()
	s.translate(video.ID)

	w := s.do(http.MethodGet, "/stats", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var out services.Stats
	s.decode(w, &out)
	s.Equal(1, out.Videos)
	s.Equal(1, out.Translations)
	s.Equal(map[string]int{"EN->ES": 1}, out.LanguagePairs)
	s.NotNil(out.LastVideoAt)
}

func (s *APISuite) TestStaticFiles() {
	video := s.addVideo()

	w := s.do(http.MethodGet, "/data/thumbnails/"+video.ID+".png", nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = s.do(http.MethodGet, "/data/videos/"+video.ID+".mp4", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(test.MP4Header, w.Body.Bytes())
}

func (s *APISuite) TestRootPath() {
	s.router = s.newRouter("api/")

	w := s.do(http.MethodGet, "/api/health", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestNormalizeRootPath(t *testing.T) {
	for in, want := range map[string]string{
		"":       "/",
		"/":      "/",
		"api":    "/api",
		"/api/":  "/api",
		" /v1/ ": "/v1",
	} {
		assert.Equal(t, want, api.NormalizeRootPath(in), in)
	}
}

func TestStatusFor(t *testing.T) {
	for err, want := range map[error]int{
		model.ErrVideoNotFound:                                  http.StatusNotFound,
		fmt.Errorf("wrapped: %w", model.ErrTranslationNotFound): http.StatusNotFound,
		model.ErrNoVideos:                                       http.StatusNotFound,
		model.ErrInvalidSegment:                                 http.StatusBadRequest,
		model.ErrSegmentBeyondDuration:                          http.StatusBadRequest,
		model.ErrUnsupportedLanguage:                            http.StatusBadRequest,
		model.ErrVideoDownload:                                  http.StatusBadGateway,
		model.ErrNotAVideo:                                      http.StatusBadGateway,
		model.ErrTranslator:                                     http.StatusBadGateway,
		model.ErrOCR:                                            http.StatusBadGateway,
		model.ErrTTS:                                            http.StatusBadGateway,
		model.ErrArchiveDisabled:                                http.StatusNotImplemented,
		model.ErrAudioExtraction:                                http.StatusInternalServerError,
		errors.New("boom"):                                      http.StatusInternalServerError,
	} {
		require.Equal(t, want, api.StatusFor(err), err.Error())
	}
}
