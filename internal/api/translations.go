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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
)

// TranslationRouter registers the /translations routes.
func TranslationRouter(r *gin.RouterGroup, translationService *services.TranslationService) {
	translations := r.Group("/translations")
	{
		translations.GET("", func(c *gin.Context) {
			out, err := translationService.GetTranslations(c.Request.Context())
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, NewTranslationsModel(out))
		})

		translations.GET("/:id", func(c *gin.Context) {
			out, err := translationService.GetTranslation(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, NewTranslationModel(out))
		})

		// Speech of the translated text, as WAV.
		translations.POST("/:id/speech", func(c *gin.Context) {
			wav, err := translationService.SpeakTranslation(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.Data(http.StatusOK, wavContentType, wav)
		})
	}
}
