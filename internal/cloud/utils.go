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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "VT_CONFIG_PREFIX"
	EnvConfigRuntime    = "VT_RUNTIME"
	DefaultRuntime      = "local"
	MaxRetries          = 3
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime configuration file names derived
// from VT_CONFIG_PREFIX and VT_RUNTIME.
func ConfigFiles() (base string, runtime string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}
	env := os.Getenv(EnvConfigRuntime)
	if env == "" {
		env = DefaultRuntime
	}
	base = prefix + ConfigFileBaseName + ConfigFileExtension
	runtime = prefix + ConfigFileBaseName + ConfigSeparator + env + ConfigFileExtension
	return base, runtime
}

// LoadConfig decodes the base TOML file and then the runtime file over it.
// Missing files are skipped; malformed files are an error.
func LoadConfig(baseConfig any) error {
	base, runtime := ConfigFiles()
	for _, name := range []string{base, runtime} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("decode configuration file %s: %w", name, err)
		}
		slog.Debug("configuration file loaded", "file", name)
	}
	return nil
}

// EnvOverrides are the environment variables that win over the TOML files.
type EnvOverrides struct {
	DatabaseDSN        string `env:"DB"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	DataDir            string `env:"DATA_DIR"`
	LogLevel           string `env:"LOG_LEVEL"`
	GoogleProject      string `env:"GOOGLE_CLOUD_PROJECT"`
	ArchiveBackend     string `env:"ARCHIVE_BACKEND"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// ApplyEnvOverrides copies every set override into config.
func ApplyEnvOverrides(ctx context.Context, config *Config) error {
	var env EnvOverrides
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.Database.DSN, env.DatabaseDSN)
	set(&config.Application.GeminiAPIKey, env.GeminiAPIKey)
	set(&config.Storage.DataDir, env.DataDir)
	set(&config.Logging.Level, env.LogLevel)
	set(&config.Application.GoogleProjectId, env.GoogleProject)
	set(&config.Storage.ArchiveBackend, env.ArchiveBackend)
	set(&config.Storage.S3AccessKey, env.AWSAccessKeyID)
	set(&config.Storage.S3SecretKey, env.AWSSecretAccessKey)
	return nil
}

// GenerateMultiModalResponse calls the model, retrying failed calls up to
// MaxRetries times, records token usage and returns the concatenated text of
// every candidate with markdown code fences removed.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	model *QuotaAwareGenerativeAIModel,
	contents []*genai.Content) (string, error) {
	resp, err := GenerateWithRetry(ctx, retryCounter, model, contents)
	if err != nil {
		return "", err
	}
	RecordUsage(ctx, inputTokenCounter, outputTokenCounter, resp)
	return CleanJSONResponse(ResponseText(resp)), nil
}

// GenerateWithRetry returns the first successful response, or the last error
// once MaxRetries retries have failed.
func GenerateWithRetry(
	ctx context.Context,
	retryCounter metric.Int64Counter,
	model *QuotaAwareGenerativeAIModel,
	contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for try := 0; try <= MaxRetries; try++ {
		if try > 0 {
			retryCounter.Add(ctx, 1)
			slog.WarnContext(ctx, "retrying generation", "model", model.ModelName, "try", try, "error", lastErr)
		}
		resp, err := model.GenerateContent(ctx, contents)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("generate content with %s: %w", model.ModelName, lastErr)
}

func RecordUsage(ctx context.Context, input, output metric.Int64Counter, resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	input.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
	output.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
}

// ResponseText concatenates the text parts of every candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}

// CleanJSONResponse strips surrounding whitespace, ``` fences and a leading
// "json" language tag.
func CleanJSONResponse(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	value = strings.TrimPrefix(value, "json")
	return strings.TrimSpace(value)
}

// NewTextPart wraps a prompt string as a part.
func NewTextPart(in string) *genai.Part {
	return &genai.Part{Text: in}
}

// NewBlobPart wraps raw bytes as an inline data part.
func NewBlobPart(data []byte, mimeType string) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}}
}

// NewUserContent builds a single user turn from parts.
func NewUserContent(parts ...*genai.Part) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: parts}}
}
