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

// Package cloud holds the application configuration and every client that
// talks to a hosted service: Gemini, Cloud Storage, S3, BigQuery and Pub/Sub.
//
// Configuration is layered. configs/.env.toml is decoded first, then the
// runtime specific file (configs/.env.local.toml, configs/.env.test.toml, ...)
// and finally a handful of environment variables. See LoadConfig.
package cloud

import (
	"time"

	"google.golang.org/genai"
)

// DefaultSafetySettings lets every harm category through. Audio and thumbnails
// come from user supplied videos and must not be silently dropped.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Logical names of the agent models and topic subscriptions.
const (
	TranslatorModel = "translator"
	SpeechModel     = "tts"
	IngestTopic     = "IngestTopic"
)

// Archive backends.
const (
	ArchiveNone = ""
	ArchiveGCS  = "gcs"
	ArchiveS3   = "s3"
)

// Server is the HTTP listener configuration.
type Server struct {
	Host                string `toml:"host"`
	Port                int    `toml:"port"`
	RootPath            string `toml:"root_path"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

func (s Server) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s Server) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// Storage is where videos and thumbnails live locally, and where they are
// archived when an archive backend is selected.
type Storage struct {
	DataDir        string `toml:"data_dir"`
	ArchiveBackend string `toml:"archive_backend"` // "", "gcs" or "s3"
	GCSBucket      string `toml:"gcs_bucket"`
	S3Bucket       string `toml:"s3_bucket"`
	S3Region       string `toml:"s3_region"`
	S3Endpoint     string `toml:"s3_endpoint"`
	S3AccessKey    string `toml:"-"`
	S3SecretKey    string `toml:"-"`
	SignedURLTTL   int    `toml:"signed_url_ttl_minutes"`
}

// Database selects the SQL store. An empty DSN or ":memory:" keeps rows in
// process memory.
type Database struct {
	DSN      string `toml:"dsn"`
	MaxConns int32  `toml:"max_conns"`
}

// Media locates the ffmpeg tools. Empty paths are resolved through PATH.
type Media struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

// BigQueryDataSource is the export destination of translations. Export is
// disabled while DatasetName is empty.
type BigQueryDataSource struct {
	DatasetName      string `toml:"dataset"`
	TranslationTable string `toml:"translation_table"`
}

// PromptTemplates are text/template sources.
type PromptTemplates struct {
	Translate string `toml:"translate"` // {{.From}}, {{.To}}
	OCR       string `toml:"ocr"`
	Speech    string `toml:"speech"` // {{.Language}}, {{.Text}}
}

// GeminiModel configures one generative model.
type GeminiModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	Voice              string  `toml:"voice"`
	RateLimit          int     `toml:"rate_limit"` // requests per second
}

type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

type Telemetry struct {
	Export bool `toml:"export"`
}

type Logging struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Config is the root of the configuration tree.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
		GeminiAPIKey              string `toml:"-"`
	} `toml:"application"`
	Server             Server                       `toml:"server"`
	Storage            Storage                      `toml:"storage"`
	Database           Database                     `toml:"database"`
	Media              Media                        `toml:"media"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	AgentModels        map[string]GeminiModel       `toml:"agent_models"`
	Telemetry          Telemetry                    `toml:"telemetry"`
	Logging            Logging                      `toml:"logging"`
}

// NewConfig returns a Config holding the built-in defaults. Files and the
// environment only need to name what they change.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels: map[string]GeminiModel{
			TranslatorModel: {Model: "gemini-2.5-flash", RateLimit: 5},
			SpeechModel:     {Model: "gemini-2.5-flash-preview-tts", Voice: "Kore", RateLimit: 2},
		},
	}
	c.Application.Name = "tower-of-babel-video"
	c.Server = Server{Host: "0.0.0.0", Port: 8000, ReadTimeoutSeconds: 20, WriteTimeoutSeconds: 120}
	c.Storage = Storage{DataDir: "data", SignedURLTTL: 60}
	c.Database = Database{DSN: ":memory:", MaxConns: 10}
	c.PromptTemplates = PromptTemplates{
		Translate: DefaultTranslatePrompt,
		OCR:       DefaultOCRPrompt,
		Speech:    DefaultSpeechPrompt,
	}
	c.Logging = Logging{Level: "info", File: "app.log"}
	return c
}
