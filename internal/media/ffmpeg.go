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

// Package media runs ffmpeg and ffprobe against stored videos. Media bytes are
// only ever exchanged with the tools through files.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
)

const (
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"

	// AudioSampleRate is the rate of every extracted segment.
	AudioSampleRate = 44100
	TempFilePrefix  = "segment-"
)

// FFmpegProcessor implements model.MediaProcessor with the ffmpeg CLI tools.
type FFmpegProcessor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegProcessor uses the binaries found on PATH when a path is empty.
func NewFFmpegProcessor(ffmpegPath string, ffprobePath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFFmpegPath
	}
	if ffprobePath == "" {
		ffprobePath = DefaultFFprobePath
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe reads the container duration and the size of the first video stream.
func (p *FFmpegProcessor) Probe(ctx context.Context, path string) (*model.VideoMetadata, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	stdout, err := p.run(ctx, p.ffprobePath, args)
	if err != nil {
		return nil, err
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}

	metadata := &model.VideoMetadata{DurationSeconds: duration}
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			metadata.Width = s.Width
			metadata.Height = s.Height
			break
		}
	}
	return metadata, nil
}

// ExtractAudio clips [from, to) into a 16-bit PCM WAV at 44.1 kHz, keeping the
// source channel layout, and returns the file contents.
func (p *FFmpegProcessor) ExtractAudio(ctx context.Context, path string, fromSeconds float64, toSeconds float64) ([]byte, error) {
	tempFile, err := os.CreateTemp("", TempFilePrefix+"*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	out := tempFile.Name()
	_ = tempFile.Close()
	defer func() { _ = os.Remove(out) }()

	args := []string{
		"-y",
		"-hide_banner",
		"-ss", formatSeconds(fromSeconds),
		"-t", formatSeconds(toSeconds - fromSeconds),
		"-i", path,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(AudioSampleRate),
		"-f", "wav",
		out,
	}
	if _, err := p.run(ctx, p.ffmpegPath, args); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read extracted audio: %w", err)
	}
	return data, nil
}

// Thumbnail writes the first video frame of path to out.
func (p *FFmpegProcessor) Thumbnail(ctx context.Context, path string, out string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-i", path,
		"-frames:v", "1",
		out,
	}
	_, err := p.run(ctx, p.ffmpegPath, args)
	return err
}

func (p *FFmpegProcessor) run(ctx context.Context, binary string, args []string) ([]byte, error) {
	// #nosec G204 - binary paths come from configuration, not from requests
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s cancelled: %w", binary, ctx.Err())
		}
		return nil, &FFmpegError{Binary: binary, Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// formatSeconds keeps full precision so that short ranges do not round to 0.
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// FFmpegError is a failed ffmpeg or ffprobe run, with its stderr.
type FFmpegError struct {
	Binary string
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("%s error: %v\nargs: %v\nstderr: %s", e.Binary, e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
