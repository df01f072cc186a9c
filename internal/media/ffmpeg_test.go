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

package media_test

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/RichNachos/tower-of-babel-video/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found in PATH, skipping test", bin)
		}
	}
}

// createTestVideo renders a 64x48 clip with a silent stereo track.
func createTestVideo(t *testing.T, path string, duration float64) {
	t.Helper()
	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=blue:s=64x48:d=%.1f", duration),
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=44100:cl=stereo:d=%.1f", duration),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-c:a", "aac",
		"-shortest",
		path,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to create test video: %v\noutput: %s", err, output)
	}
}

func TestProbe(t *testing.T) {
	skipIfNoFFmpeg(t)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	createTestVideo(t, path, 2)

	p := media.NewFFmpegProcessor("", "")
	metadata, err := p.Probe(context.Background(), path)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, metadata.DurationSeconds, 0.2)
	assert.Equal(t, 64, metadata.Width)
	assert.Equal(t, 48, metadata.Height)
}

func TestExtractAudio(t *testing.T) {
	skipIfNoFFmpeg(t)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	createTestVideo(t, path, 3)

	p := media.NewFFmpegProcessor("", "")
	wav, err := p.ExtractAudio(context.Background(), path, 0.5, 1.5)
	require.NoError(t, err)

	require.Greater(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	channels := binary.LittleEndian.Uint16(wav[22:24])
	rate := binary.LittleEndian.Uint32(wav[24:28])
	assert.Equal(t, uint16(2), channels)
	assert.Equal(t, uint32(media.AudioSampleRate), rate)
}

func TestThumbnail(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	createTestVideo(t, path, 1)
	out := filepath.Join(dir, "clip.png")

	p := media.NewFFmpegProcessor("", "")
	require.NoError(t, p.Thumbnail(context.Background(), path, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestMissingInputReturnsFFmpegError(t *testing.T) {
	skipIfNoFFmpeg(t)

	p := media.NewFFmpegProcessor("", "")
	_, err := p.Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)

	var ffErr *media.FFmpegError
	require.True(t, errors.As(err, &ffErr))
	assert.Equal(t, "ffprobe", ffErr.Binary)
	assert.NotEmpty(t, ffErr.Stderr)
}

func TestExtractAudioArgs(t *testing.T) {
	ffmpeg := filepath.Join(t.TempDir(), "ffmpeg-not-installed")
	p := media.NewFFmpegProcessor(ffmpeg, "")

	for _, tc := range []struct {
		from, to          float64
		wantSS, wantDelta string
	}{
		{from: 1.5, to: 4, wantSS: "1.5", wantDelta: "2.5"},
		{from: 2, to: 2.0004, wantSS: "2"},
		{from: 0, to: 0.0001, wantSS: "0", wantDelta: "0.0001"},
	} {
		_, err := p.ExtractAudio(context.Background(), "in.mp4", tc.from, tc.to)
		var ffErr *media.FFmpegError
		require.True(t, errors.As(err, &ffErr))
		assert.Equal(t, ffmpeg, ffErr.Binary)
		assert.Equal(t, tc.wantSS, argAfter(ffErr.Args, "-ss"))
		delta, err := strconv.ParseFloat(argAfter(ffErr.Args, "-t"), 64)
		require.NoError(t, err)
		assert.Greater(t, delta, 0.0)
		if tc.wantDelta != "" {
			assert.Equal(t, tc.wantDelta, argAfter(ffErr.Args, "-t"))
		}
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestWrapPCM16(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	wav := media.WrapPCM16(pcm, media.SpeechSampleRate, media.SpeechChannels)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}
