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

	"cloud.google.com/go/bigquery"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

// BigQueryExporter streams translations into a BigQuery table for analysis.
type BigQueryExporter struct {
	client  *bigquery.Client
	dataset string
	table   string
}

func NewBigQueryExporter(client *bigquery.Client, source BigQueryDataSource) *BigQueryExporter {
	return &BigQueryExporter{client: client, dataset: source.DatasetName, table: source.TranslationTable}
}

// Export inserts one row. The translation id is the insert id, so a retried
// export does not duplicate the row.
func (e *BigQueryExporter) Export(ctx context.Context, translation *model.Translation) error {
	inserter := e.client.Dataset(e.dataset).Table(e.table).Inserter()
	if err := inserter.Put(ctx, TranslationRow{translation}); err != nil {
		return fmt.Errorf("bigquery insert of translation %s into %s.%s: %w", translation.ID, e.dataset, e.table, err)
	}
	slog.DebugContext(ctx, "translation exported", "id", translation.ID, "table", e.table)
	return nil
}

// TranslationRow adapts a translation to bigquery.ValueSaver.
type TranslationRow struct {
	*model.Translation
}

func (r TranslationRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"id":              r.ID,
		"video_id":        r.VideoID,
		"from_seconds":    r.FromSeconds,
		"to_seconds":      r.ToSeconds,
		"from_language":   r.FromLanguage.String(),
		"to_language":     r.ToLanguage.String(),
		"original_text":   r.OriginalText,
		"translated_text": r.TranslatedText,
		"created_at":      r.CreatedAt,
	}, r.ID, nil
}
