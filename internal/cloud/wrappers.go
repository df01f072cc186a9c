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

package cloud

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GenerateFunc is the signature of genai.Models.GenerateContent.
type GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// QuotaAwareGenerativeAIModel puts a token bucket in front of a generative
// model so that callers never exceed the model quota.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	Generate                GenerateFunc
	RateLimit               *rate.Limiter
}

// NewQuotaAwareModel allows requestsPerSecond calls per second with an equal
// burst. A non-positive rate means one call per second.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, models *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return NewQuotaAwareModelWithFunc(config, name, models.GenerateContent, requestsPerSecond)
}

func NewQuotaAwareModelWithFunc(config *genai.GenerateContentConfig, name string, generate GenerateFunc, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		Generate:                generate,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second/time.Duration(requestsPerSecond)), requestsPerSecond),
	}
}

// GenerateContent waits for a token, honouring ctx, then calls the model.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", q.ModelName, err)
	}
	return q.Generate(ctx, q.ModelName, contents, q.GenerativeContentConfig)
}
