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

package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and applies the schema.
func NewPostgresStore(ctx context.Context, config Config) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range QrySchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	slog.InfoContext(ctx, "connected to postgres",
		"host", poolConfig.ConnConfig.Host, "database", poolConfig.ConnConfig.Database)
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Videos() model.VideoRepository {
	return pgVideos{s.pool}
}

func (s *PostgresStore) Translations() model.TranslationRepository {
	return pgTranslations{s.pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// scanner is satisfied by pgx.Row and pgx.CollectableRow.
type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (*model.Video, error) {
	var v model.Video
	var videoType string
	if err := row.Scan(&v.ID, &v.OriginalURL, &videoType, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.VideoType = model.VideoType(videoType)
	v.CreatedAt = v.CreatedAt.UTC()
	return &v, nil
}

func scanTranslation(row scanner) (*model.Translation, error) {
	var t model.Translation
	var from, to string
	err := row.Scan(&t.ID, &t.VideoID, &t.FromSeconds, &t.ToSeconds, &from, &to,
		&t.OriginalText, &t.TranslatedText, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.FromLanguage = model.Language(from)
	t.ToLanguage = model.Language(to)
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

type pgVideos struct{ pool *pgxpool.Pool }

func (r pgVideos) List(ctx context.Context) ([]*model.Video, error) {
	rows, err := r.pool.Query(ctx, QryListVideos)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	videos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Video, error) {
		return scanVideo(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

func (r pgVideos) Get(ctx context.Context, id string) (*model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, QryGetVideo, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrVideoNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return v, nil
}

func (r pgVideos) Latest(ctx context.Context) (*model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, QryLatestVideo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNoVideos
	}
	if err != nil {
		return nil, fmt.Errorf("latest video: %w", err)
	}
	return v, nil
}

func (r pgVideos) Create(ctx context.Context, video *model.Video) error {
	_, err := r.pool.Exec(ctx, QryInsertVideo, video.ID, video.OriginalURL, string(video.VideoType), video.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert video %s: %w", video.ID, err)
	}
	return nil
}

type pgTranslations struct{ pool *pgxpool.Pool }

func (r pgTranslations) query(ctx context.Context, sql string, args ...any) ([]*model.Translation, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Translation, error) {
		return scanTranslation(row)
	})
}

func (r pgTranslations) List(ctx context.Context) ([]*model.Translation, error) {
	out, err := r.query(ctx, QryListTranslations)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	return out, nil
}

func (r pgTranslations) ListByVideo(ctx context.Context, videoID string) ([]*model.Translation, error) {
	out, err := r.query(ctx, QryListTranslationsByVideo, videoID)
	if err != nil {
		return nil, fmt.Errorf("list translations of video %s: %w", videoID, err)
	}
	return out, nil
}

func (r pgTranslations) Get(ctx context.Context, id string) (*model.Translation, error) {
	t, err := scanTranslation(r.pool.QueryRow(ctx, QryGetTranslation, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrTranslationNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get translation %s: %w", id, err)
	}
	return t, nil
}

func (r pgTranslations) Create(ctx context.Context, t *model.Translation) error {
	_, err := r.pool.Exec(ctx, QryInsertTranslation,
		t.ID, t.VideoID, t.FromSeconds, t.ToSeconds, string(t.FromLanguage), string(t.ToLanguage),
		t.OriginalText, t.TranslatedText, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert translation %s: %w", t.ID, err)
	}
	return nil
}
