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
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// UserAgent is sent with every Google Cloud request.
const UserAgent = "tower-of-babel-video/1.0"

// ServiceClients holds every external client the application uses. Clients
// whose configuration is absent stay nil and the matching feature is off.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	GenAIClient     *genai.Client
	BigQueryClient  *bigquery.Client
	IAMClient       *credentials.IamCredentialsClient
	PubSubListeners map[string]*PubSubListener
	AgentModels     map[string]*QuotaAwareGenerativeAIModel

	Translator   model.Translator
	OCR          model.OCRGenerator
	Speech       model.SpeechSynthesizer
	Archiver     model.Archiver
	Exporter     model.TranslationExporter
	SignedURLTTL time.Duration
}

// Close releases every open client.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
}

// NewCloudServiceClients creates the clients config asks for:
//   - Gemini through the API key when one is set, through Vertex AI when only
//     a project and location are set, and FakeGeminiClient otherwise;
//   - a GCS or S3 archiver for storage.archive_backend;
//   - a BigQuery exporter when a dataset is named;
//   - a Pub/Sub listener per topic subscription.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	clients := &ServiceClients{
		PubSubListeners: make(map[string]*PubSubListener),
		AgentModels:     make(map[string]*QuotaAwareGenerativeAIModel),
		SignedURLTTL:    time.Duration(config.Storage.SignedURLTTL) * time.Minute,
	}
	ok := false
	defer func() {
		if !ok {
			clients.Close()
		}
	}()

	if err := clients.setupGemini(ctx, config); err != nil {
		return nil, err
	}
	if err := clients.setupArchive(ctx, config); err != nil {
		return nil, err
	}

	projectID := config.Application.GoogleProjectId
	if config.BigQueryDataSource.DatasetName != "" {
		if projectID == "" {
			return nil, fmt.Errorf("big_query_data_source.dataset requires application.google_project_id")
		}
		bc, err := bigquery.NewClient(ctx, projectID, option.WithUserAgent(UserAgent))
		if err != nil {
			return nil, fmt.Errorf("create bigquery client: %w", err)
		}
		clients.BigQueryClient = bc
		clients.Exporter = NewBigQueryExporter(bc, config.BigQueryDataSource)
	}

	if len(config.TopicSubscriptions) > 0 {
		if projectID == "" {
			return nil, fmt.Errorf("topic_subscriptions require application.google_project_id")
		}
		pc, err := pubsub.NewClient(ctx, projectID, option.WithUserAgent(UserAgent))
		if err != nil {
			return nil, fmt.Errorf("create pubsub client: %w", err)
		}
		clients.PubsubClient = pc
		for key, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(pc, values.Name, nil)
			if err != nil {
				return nil, err
			}
			listener.SetTimeout(time.Duration(values.TimeoutInSeconds) * time.Second)
			clients.PubSubListeners[key] = listener
		}
	}

	ok = true
	return clients, nil
}

func (c *ServiceClients) setupGemini(ctx context.Context, config *Config) error {
	var clientConfig *genai.ClientConfig
	switch {
	case config.Application.GeminiAPIKey != "":
		clientConfig = &genai.ClientConfig{
			APIKey:  config.Application.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	case config.Application.GoogleProjectId != "" && config.Application.GoogleLocation != "":
		clientConfig = &genai.ClientConfig{
			Project:  config.Application.GoogleProjectId,
			Location: config.Application.GoogleLocation,
			Backend:  genai.BackendVertexAI,
		}
	default:
		slog.WarnContext(ctx, "no Gemini credentials configured, using fixed responses")
		fake := FakeGeminiClient{}
		c.Translator, c.OCR, c.Speech = fake, fake, fake
		return nil
	}

	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}
	c.GenAIClient = gc

	for key, values := range config.AgentModels {
		c.AgentModels[key] = NewQuotaAwareModel(NewGenerateContentConfig(values, key == SpeechModel), values.Model, gc.Models, values.RateLimit)
	}
	translator, found := c.AgentModels[TranslatorModel]
	if !found {
		return fmt.Errorf("agent_models.%s is not configured", TranslatorModel)
	}
	speech, found := c.AgentModels[SpeechModel]
	if !found {
		return fmt.Errorf("agent_models.%s is not configured", SpeechModel)
	}

	prompts, err := NewPrompts(config.PromptTemplates)
	if err != nil {
		return err
	}
	gemini := NewGeminiClient(translator, speech, prompts)
	c.Translator, c.OCR, c.Speech = gemini, gemini, gemini
	return nil
}

func (c *ServiceClients) setupArchive(ctx context.Context, config *Config) error {
	switch config.Storage.ArchiveBackend {
	case ArchiveNone:
		return nil
	case ArchiveGCS:
		if config.Storage.GCSBucket == "" {
			return fmt.Errorf("gcs archive backend requires storage.gcs_bucket")
		}
		sc, err := storage.NewClient(ctx, option.WithUserAgent(UserAgent))
		if err != nil {
			return fmt.Errorf("create storage client: %w", err)
		}
		c.StorageClient = sc
		if email := config.Application.SignerServiceAccountEmail; email != "" {
			ic, err := credentials.NewIamCredentialsClient(ctx, option.WithUserAgent(UserAgent))
			if err != nil {
				return fmt.Errorf("create iam credentials client: %w", err)
			}
			c.IAMClient = ic
		}
		c.Archiver = NewGCSArchiver(sc, c.IAMClient, config.Storage.GCSBucket, config.Application.SignerServiceAccountEmail)
		return nil
	case ArchiveS3:
		archiver, err := NewS3Archiver(ctx, config.Storage)
		if err != nil {
			return err
		}
		c.Archiver = archiver
		return nil
	default:
		return fmt.Errorf("unknown archive backend %q", config.Storage.ArchiveBackend)
	}
}
