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

// Package api is the REST surface of the server: gin routes, request and
// response models, and the mapping of service errors to HTTP statuses.
//
// Errors are always rendered as {"detail": "<message>"}.
package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
)

// Services are the handlers' collaborators. Stats is optional.
type Services struct {
	Videos       *services.VideoService
	Translations *services.TranslationService
	Stats        *services.StatsService
}

type RouterConfig struct {
	ServiceName string
	RootPath    string
}

// NewRouter builds the gin engine with every route mounted under the root
// path. Stored videos and thumbnails are served from /data/videos and
// /data/thumbnails.
func NewRouter(config RouterConfig, s Services) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(config.ServiceName))
	r.Use(cors.Default())

	root := r.Group(NormalizeRootPath(config.RootPath))
	{
		Health(root)
		VideoRouter(root, s.Videos, s.Translations)
		TranslationRouter(root, s.Translations)
		if s.Stats != nil {
			Dashboard(root, s.Stats)
		}

		layout := s.Videos.Layout()
		root.Static("/data/videos", layout.VideosDir())
		root.Static("/data/thumbnails", layout.ThumbnailsDir())
	}
	return r
}

// NormalizeRootPath turns "", "api", "/api/" and "/api" into "/" or "/api".
func NormalizeRootPath(rootPath string) string {
	trimmed := strings.Trim(strings.TrimSpace(rootPath), "/")
	return "/" + trimmed
}
