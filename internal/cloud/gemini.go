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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	MimeTypeWAV = "audio/wav"
	MimeTypePNG = "image/png"
)

// GeminiClient translates audio, reads text from images and synthesizes
// speech with Gemini models.
type GeminiClient struct {
	translator *QuotaAwareGenerativeAIModel
	speech     *QuotaAwareGenerativeAIModel
	prompts    *Prompts

	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	retries      metric.Int64Counter
}

// NewGeminiClient wires the two models behind the client. translator serves
// both translation and OCR.
func NewGeminiClient(translator *QuotaAwareGenerativeAIModel, speech *QuotaAwareGenerativeAIModel, prompts *Prompts) *GeminiClient {
	meter := otel.Meter(cor.MeterName)
	inputTokens, _ := meter.Int64Counter("gemini.token.input")
	outputTokens, _ := meter.Int64Counter("gemini.token.output")
	retries, _ := meter.Int64Counter("gemini.retry")
	return &GeminiClient{
		translator:   translator,
		speech:       speech,
		prompts:      prompts,
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
		retries:      retries,
	}
}

// NewGenerateContentConfig maps a configured model to its request settings.
// Unset knobs are left to the model defaults.
func NewGenerateContentConfig(m GeminiModel, audioOut bool) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if m.Temperature > 0 {
		config.Temperature = genai.Ptr[float32](m.Temperature)
	}
	if m.TopP > 0 {
		config.TopP = genai.Ptr[float32](m.TopP)
	}
	if m.TopK > 0 {
		config.TopK = genai.Ptr[float32](m.TopK)
	}
	if m.MaxTokens > 0 {
		config.MaxOutputTokens = m.MaxTokens
	}
	if m.SystemInstructions != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: m.SystemInstructions}}}
	}
	if audioOut {
		voice := m.Voice
		if voice == "" {
			voice = "Kore"
		}
		config.ResponseModalities = []string{"AUDIO"}
		config.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		}
		return config
	}
	config.SafetySettings = DefaultSafetySettings
	if m.OutputFormat != "" {
		config.ResponseMIMEType = m.OutputFormat
	}
	return config
}

// Translate asks the model for the transcript of wav and its translation.
func (g *GeminiClient) Translate(ctx context.Context, wav []byte, from model.Language, to model.Language) (*model.TranslatorResponse, error) {
	prompt, err := g.prompts.Translate(from.String(), to.String())
	if err != nil {
		return nil, err
	}
	text, err := GenerateMultiModalResponse(ctx, g.inputTokens, g.outputTokens, g.retries, g.translator,
		NewUserContent(NewTextPart(prompt), NewBlobPart(wav, MimeTypeWAV)))
	if err != nil {
		return nil, err
	}
	return ParseTranslatorResponse(text)
}

// ParseTranslatorResponse decodes the {"original", "translated"} document the
// translate prompt asks for.
func ParseTranslatorResponse(text string) (*model.TranslatorResponse, error) {
	cleaned := CleanJSONResponse(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", model.ErrTranslator)
	}
	var out struct {
		Original   *string `json:"original"`
		Translated *string `json:"translated"`
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTranslator, err)
	}
	if out.Original == nil || out.Translated == nil {
		return nil, fmt.Errorf("%w: missing original or translated in %q", model.ErrTranslator, cleaned)
	}
	return &model.TranslatorResponse{OriginalText: *out.Original, TranslatedText: *out.Translated}, nil
}

// GenerateOCR lists the words visible in a PNG image.
func (g *GeminiClient) GenerateOCR(ctx context.Context, png []byte) (string, error) {
	prompt, err := g.prompts.OCR()
	if err != nil {
		return "", err
	}
	resp, err := GenerateWithRetry(ctx, g.retries, g.translator,
		NewUserContent(NewTextPart(prompt), NewBlobPart(png, MimeTypePNG)))
	if err != nil {
		return "", err
	}
	RecordUsage(ctx, g.inputTokens, g.outputTokens, resp)

	text := ResponseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", model.ErrOCR
	}
	return text, nil
}

// TextToSpeech returns the raw PCM the speech model produced for text.
func (g *GeminiClient) TextToSpeech(ctx context.Context, text string, language model.Language) ([]byte, error) {
	prompt, err := g.prompts.Speech(language.String(), text)
	if err != nil {
		return nil, err
	}
	resp, err := GenerateWithRetry(ctx, g.retries, g.speech, NewUserContent(NewTextPart(prompt)))
	if err != nil {
		return nil, err
	}
	RecordUsage(ctx, g.inputTokens, g.outputTokens, resp)

	audio := firstInlineData(resp)
	if len(audio) == 0 {
		return nil, model.ErrTTS
	}
	slog.DebugContext(ctx, "speech generated", "bytes", len(audio), "language", language)
	return audio, nil
}

func firstInlineData(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil
	}
	part := content.Parts[0]
	if part == nil || part.InlineData == nil {
		return nil
	}
	return part.InlineData.Data
}

// FakeGeminiClient answers with fixed values. It stands in for Gemini when no
// API key is configured.
type FakeGeminiClient struct{}

func (FakeGeminiClient) Translate(_ context.Context, _ []byte, _ model.Language, _ model.Language) (*model.TranslatorResponse, error) {
	return &model.TranslatorResponse{OriginalText: "original", TranslatedText: "translated"}, nil
}

func (FakeGeminiClient) GenerateOCR(_ context.Context, _ []byte) (string, error) {
	return "ocr text", nil
}

func (FakeGeminiClient) TextToSpeech(_ context.Context, _ string, _ model.Language) ([]byte, error) {
	return []byte{}, nil
}
