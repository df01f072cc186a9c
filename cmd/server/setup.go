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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies: configuration, external clients, the store,
// and the video, translation and stats services.
//
// Functions:
//   - SetupOS: Points the configuration loader at the configs directory unless the
//     environment already does.
//   - GetConfig: Loads .env, the TOML files and the environment overrides.
//   - InitState: Creates every client, opens the store and builds the services.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/RichNachos/tower-of-babel-video/internal/cloud"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
	"github.com/RichNachos/tower-of-babel-video/internal/downloader"
	"github.com/RichNachos/tower-of-babel-video/internal/media"
	"github.com/RichNachos/tower-of-babel-video/internal/persistence"
)

// StateManager holds all the shared dependencies of the server.
type StateManager struct {
	config             *cloud.Config
	cloud              *cloud.ServiceClients
	store              persistence.Store
	videoService       *services.VideoService
	translationService *services.TranslationService
	statsService       *services.StatsService
}

var state = &StateManager{}

// Close releases the store and every external client.
func (s *StateManager) Close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.cloud != nil {
		s.cloud.Close()
	}
}

// SetupOS sets the environment variables the configuration loader uses to find
// the TOML files, keeping any value the caller already exported.
func SetupOS() error {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		return os.Setenv(cloud.EnvConfigRuntime, cloud.DefaultRuntime)
	}
	return nil
}

// GetConfig loads the configuration in order: the .env file (if present), the
// base and runtime TOML files, then the environment overrides.
func GetConfig(ctx context.Context) (*cloud.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := SetupOS(); err != nil {
		return nil, fmt.Errorf("setup environment: %w", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	if err := cloud.ApplyEnvOverrides(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// InitState wires the application together:
//  1. Creates the external clients (Gemini, archive, BigQuery, Pub/Sub).
//  2. Opens the PostgreSQL or in-memory store.
//  3. Creates the data directories.
//  4. Builds the services on top of ffmpeg and the HTTP downloader.
func InitState(ctx context.Context, config *cloud.Config) error {
	state.config = config

	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return fmt.Errorf("create service clients: %w", err)
	}
	state.cloud = clients

	store, err := persistence.Connect(ctx, persistence.Config{
		DSN:      config.Database.DSN,
		MaxConns: config.Database.MaxConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	state.store = store

	layout := model.StorageLayout{DataDir: config.Storage.DataDir}
	for _, dir := range []string{layout.VideosDir(), layout.ThumbnailsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	state.videoService = services.NewVideoService(services.VideoServiceDeps{
		Videos:       store.Videos(),
		Downloader:   downloader.NewHTTPDownloader(),
		Media:        media.NewFFmpegProcessor(config.Media.FFmpegPath, config.Media.FFprobePath),
		OCR:          clients.OCR,
		Archiver:     clients.Archiver,
		Layout:       layout,
		SignedURLTTL: clients.SignedURLTTL,
	})
	state.translationService = services.NewTranslationService(services.TranslationServiceDeps{
		Translations: store.Translations(),
		Videos:       state.videoService,
		Translator:   clients.Translator,
		Speech:       clients.Speech,
		Exporter:     clients.Exporter,
	})
	state.statsService = &services.StatsService{
		Videos:       store.Videos(),
		Translations: store.Translations(),
	}

	slog.InfoContext(ctx, "state initialized",
		"data_dir", layout.DataDir,
		"archive", config.Storage.ArchiveBackend,
		"export", clients.Exporter != nil,
		"listeners", len(clients.PubSubListeners))
	return nil
}
