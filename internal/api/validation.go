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
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

var registerOnce sync.Once

// RegisterValidators adds the custom tags used by the request models to gin's
// validator:
//
//	language: a supported language name or ISO code, e.g. "English" or "en".
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("language", validLanguage)
	})
}

func validLanguage(fl validator.FieldLevel) bool {
	_, err := model.ParseLanguage(fl.Field().String())
	return err == nil
}
