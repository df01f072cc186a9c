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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StatusFor maps an error returned by the services to an HTTP status.
func StatusFor(err error) int {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, model.ErrVideoNotFound),
		errors.Is(err, model.ErrTranslationNotFound),
		errors.Is(err, model.ErrNoVideos):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidSegment),
		errors.Is(err, model.ErrSegmentBeyondDuration),
		errors.Is(err, model.ErrUnsupportedLanguage),
		errors.As(err, &validationErrors):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrVideoDownload),
		errors.Is(err, model.ErrNotAVideo),
		errors.Is(err, model.ErrTranslator),
		errors.Is(err, model.ErrOCR),
		errors.Is(err, model.ErrTTS):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrArchiveDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as {"detail": ...}. Internal errors are logged
// and their message is not returned to the client.
func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		detail = http.StatusText(status)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// abortWithBindingError reports a request that could not be decoded or
// validated.
func abortWithBindingError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
}
