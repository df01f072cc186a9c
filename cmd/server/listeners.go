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

package main

import (
	"context"
	"log/slog"

	"github.com/RichNachos/tower-of-babel-video/internal/cloud"
	"github.com/RichNachos/tower-of-babel-video/internal/core/services"
	"github.com/RichNachos/tower-of-babel-video/internal/core/workflow"
)

// SetupListeners attaches the ingest workflow to the IngestTopic subscription
// and starts receiving. Each message registers one video through AddVideo.
func SetupListeners(ctx context.Context, clients *cloud.ServiceClients, videoService *services.VideoService) {
	for key := range clients.PubSubListeners {
		if key != cloud.IngestTopic {
			slog.WarnContext(ctx, "no workflow for topic subscription, ignoring", "key", key)
		}
	}

	listener, ok := clients.PubSubListeners[cloud.IngestTopic]
	if !ok {
		slog.InfoContext(ctx, "no ingest subscription configured, Pub/Sub ingest disabled")
		return
	}
	listener.SetCommand(workflow.NewIngestListenerWorkflow(videoService))
	listener.Listen(ctx)
}
