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

// Package persistence is the SQL connector. It hands out the video and
// translation repositories backed either by PostgreSQL or by process memory.
package persistence

import (
	"context"
	"log/slog"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// MemoryDSN selects the in-memory store, as does an empty DSN.
const MemoryDSN = ":memory:"

type Config struct {
	DSN      string
	MaxConns int32
}

// Store owns the repositories and the connection behind them.
type Store interface {
	Videos() model.VideoRepository
	Translations() model.TranslationRepository
	Close()
}

// Connect opens the store selected by the DSN. PostgreSQL stores create their
// schema before returning.
func Connect(ctx context.Context, config Config) (Store, error) {
	if config.DSN == "" || config.DSN == MemoryDSN {
		slog.InfoContext(ctx, "using in-memory store")
		return NewMemoryStore(), nil
	}
	return NewPostgresStore(ctx, config)
}
