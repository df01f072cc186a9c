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

// QrySchema is applied statement by statement on connect. seq records
// insertion order and breaks ties between rows created in the same
// microsecond.
var QrySchema = []string{
	`CREATE TABLE IF NOT EXISTS videos (
    id           TEXT PRIMARY KEY,
    seq          BIGSERIAL NOT NULL,
    original_url TEXT NOT NULL,
    video_type   TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS translations (
    id              TEXT PRIMARY KEY,
    seq             BIGSERIAL NOT NULL,
    video_id        TEXT NOT NULL REFERENCES videos(id),
    from_seconds    DOUBLE PRECISION NOT NULL,
    to_seconds      DOUBLE PRECISION NOT NULL,
    from_language   TEXT NOT NULL,
    to_language     TEXT NOT NULL,
    original_text   TEXT NOT NULL,
    translated_text TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS ix_translations_video_id ON translations (video_id)`,
}

const (
	qryVideoColumns = "id, original_url, video_type, created_at"

	QryListVideos  = "SELECT " + qryVideoColumns + " FROM videos ORDER BY seq ASC"
	QryGetVideo    = "SELECT " + qryVideoColumns + " FROM videos WHERE id = $1"
	QryLatestVideo = "SELECT " + qryVideoColumns + " FROM videos ORDER BY created_at DESC, seq DESC LIMIT 1"
	QryInsertVideo = "INSERT INTO videos (id, original_url, video_type, created_at) VALUES ($1, $2, $3, $4)"

	qryTranslationColumns = "id, video_id, from_seconds, to_seconds, from_language, to_language, original_text, translated_text, created_at"

	QryListTranslations        = "SELECT " + qryTranslationColumns + " FROM translations ORDER BY seq ASC"
	QryGetTranslation          = "SELECT " + qryTranslationColumns + " FROM translations WHERE id = $1"
	QryListTranslationsByVideo = "SELECT " + qryTranslationColumns + " FROM translations WHERE video_id = $1 ORDER BY seq ASC"
	QryInsertTranslation       = "INSERT INTO translations (" + qryTranslationColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
)
