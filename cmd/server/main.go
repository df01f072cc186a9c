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
// *****************************************************************************************************//
// Package main is the entry point for the video translation backend server.
//
// The server registers videos from URLs, clips audio segments out of them and
// has Gemini transcribe, translate and speak those segments. It exposes a REST
// API built with Gin, instrumented with OpenTelemetry, and optionally ingests
// video URLs from a Pub/Sub subscription.
//
// Usage:
//
//	server [-host 0.0.0.0] [-port 8000] [-root-path /api]
//
// Flags that are set win over the configuration files.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/api"
	"github.com/RichNachos/tower-of-babel-video/internal/cloud"
	"github.com/RichNachos/tower-of-babel-video/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

var (
	host     = flag.String("host", "0.0.0.0", "address to listen on")
	port     = flag.Int("port", 8000, "port to listen on")
	rootPath = flag.String("root-path", "", "path prefix of every route, e.g. /api")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// applyFlags copies the flags given on the command line into config.
func applyFlags(config *cloud.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			config.Server.Host = *host
		case "port":
			config.Server.Port = *port
		case "root-path":
			config.Server.RootPath = *rootPath
		}
	})
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := GetConfig(ctx)
	if err != nil {
		return err
	}
	applyFlags(config)

	closeLogs, err := telemetry.SetupLogging(config.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closeLogs() }()
	slog.Info("Logging initialized", "level", config.Logging.Level)

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Error("failed to shutdown telemetry", "error", err)
		}
	}()
	slog.Info("Tracing initialized", "export", config.Telemetry.Export)

	if err := InitState(ctx, config); err != nil {
		return err
	}
	defer state.Close()

	SetupListeners(ctx, state.cloud, state.videoService)

	r := api.NewRouter(api.RouterConfig{
		ServiceName: config.Application.Name,
		RootPath:    config.Server.RootPath,
	}, api.Services{
		Videos:       state.videoService,
		Translations: state.translationService,
		Stats:        state.statsService,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port)),
		Handler:      r,
		ReadTimeout:  config.Server.ReadTimeout(),
		WriteTimeout: config.Server.WriteTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	slog.Info("Server ready", "addr", srv.Addr, "root_path", api.NormalizeRootPath(config.Server.RootPath))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	slog.Info("Server exiting")
	return nil
}
