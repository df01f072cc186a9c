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

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
)

const wavContentType = "audio/wav"

// VideoRouter registers the /videos routes.
//
//   - GET  /videos: every video, oldest first
//   - POST /videos: download and register a video
//   - GET  /videos/last: the newest video
//   - GET  /videos/:id: one video
//   - GET  /videos/:id/audio-segment: WAV clip of the video
//   - POST /videos/:id/audio-segment/translate: translate a clip
//   - GET  /videos/:id/translations: translations of the video
//   - GET  /videos/:id/ocr: text visible on the thumbnail
//   - GET  /videos/:id/archive-url: signed URL of the archived copy
func VideoRouter(r *gin.RouterGroup, videoService *services.VideoService, translationService *services.TranslationService) {
	videos := r.Group("/videos")
	{
		videos.GET("", func(c *gin.Context) {
			ctx := c.Request.Context()
			all, err := videoService.GetVideos(ctx)
			if err != nil {
				abortWithError(c, err)
				return
			}
			out := VideosModel{Videos: make([]VideoModel, 0, len(all))}
			for _, v := range all {
				out.Videos = append(out.Videos, renderVideo(ctx, videoService, v))
			}
			c.JSON(http.StatusOK, out)
		})

		videos.POST("", func(c *gin.Context) {
			var body AddVideoRequest
			if err := c.ShouldBindJSON(&body); err != nil {
				abortWithBindingError(c, err)
				return
			}
			ctx := c.Request.Context()
			video, err := videoService.AddVideo(ctx, body.VideoURL)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, renderVideo(ctx, videoService, video))
		})

		videos.GET("/last", func(c *gin.Context) {
			ctx := c.Request.Context()
			video, err := videoService.GetLastVideo(ctx)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, renderVideo(ctx, videoService, video))
		})

		videos.GET("/:id", func(c *gin.Context) {
			ctx := c.Request.Context()
			video, err := videoService.GetVideo(ctx, c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, renderVideo(ctx, videoService, video))
		})

		videos.GET("/:id/audio-segment", func(c *gin.Context) {
			var query AudioSegmentQuery
			if err := c.ShouldBindQuery(&query); err != nil {
				abortWithBindingError(c, err)
				return
			}
			ctx := c.Request.Context()
			video, err := videoService.GetVideo(ctx, c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			segment, err := videoService.ExtractAudioSegment(ctx, video.ID, video.VideoType, *query.FromSeconds, *query.ToSeconds)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.Header("X-Segment-From-Seconds", strconv.FormatFloat(segment.FromSeconds, 'f', -1, 64))
			c.Header("X-Segment-To-Seconds", strconv.FormatFloat(segment.ToSeconds, 'f', -1, 64))
			c.Data(http.StatusOK, wavContentType, segment.Data)
		})

		videos.POST("/:id/audio-segment/translate", func(c *gin.Context) {
			var body TranslateSegmentRequest
			if err := c.ShouldBindJSON(&body); err != nil {
				abortWithBindingError(c, err)
				return
			}
			from, err := model.ParseLanguage(body.FromLanguage)
			if err != nil {
				abortWithError(c, err)
				return
			}
			to, err := model.ParseLanguage(body.ToLanguage)
			if err != nil {
				abortWithError(c, err)
				return
			}
			translation, err := translationService.TranslateAudioSegment(c.Request.Context(), model.SegmentRequest{
				VideoID:      c.Param("id"),
				FromSeconds:  *body.FromSeconds,
				ToSeconds:    *body.ToSeconds,
				FromLanguage: from,
				ToLanguage:   to,
			})
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, NewTranslationModel(translation))
		})

		// An unknown video has no translations; this is not an error.
		videos.GET("/:id/translations", func(c *gin.Context) {
			out, err := translationService.GetTranslationsByVideo(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, NewTranslationsModel(out))
		})

		videos.GET("/:id/ocr", func(c *gin.Context) {
			id := c.Param("id")
			text, err := videoService.OCRThumbnail(c.Request.Context(), id)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, OCRModel{VideoID: id, Text: text})
		})

		videos.GET("/:id/archive-url", func(c *gin.Context) {
			var query ArchiveURLQuery
			if err := c.ShouldBindQuery(&query); err != nil {
				abortWithBindingError(c, err)
				return
			}
			ttl := time.Duration(query.TTLMinutes) * time.Minute
			url, err := videoService.ArchiveURL(c.Request.Context(), c.Param("id"), ttl)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, ArchiveURLModel{URL: url})
		})
	}
}

// renderVideo probes the video file for its metadata. A probe failure is
// logged and rendered as null metadata.
func renderVideo(ctx context.Context, videoService *services.VideoService, v *model.Video) VideoModel {
	metadata, err := videoService.ExtractVideoMetadata(ctx, v.ID, v.VideoType)
	if err != nil {
		slog.WarnContext(ctx, "failed to probe video", "id", v.ID, "error", err)
		metadata = nil
	}
	return NewVideoModel(v, metadata)
}
