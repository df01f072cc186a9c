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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// echoCommand records the message it was given and fails when told to.
type echoCommand struct {
	cor.BaseCommand
	seen        []string
	err         error
	hasDeadline bool
}

func (c *echoCommand) Execute(context cor.Context) {
	c.seen = append(c.seen, context.Get(c.GetInputParam()).(string))
	_, c.hasDeadline = context.GetContext().Deadline()
	if c.err != nil {
		c.Fail(context, c.err)
		return
	}
	c.Succeed(context, nil)
}

func TestListenerProcess(t *testing.T) {
	cmd := &echoCommand{BaseCommand: *cor.NewBaseCommand("echo")}
	listener := &PubSubListener{}
	listener.SetCommand(cmd)

	err := listener.Process(context.Background(), "1", []byte(`{"video_url": "https://example.com/a.mp4"}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{`{"video_url": "https://example.com/a.mp4"}`}, cmd.seen)
	assert.False(t, cmd.hasDeadline)
}

func TestListenerProcessFailure(t *testing.T) {
	cmd := &echoCommand{BaseCommand: *cor.NewBaseCommand("echo"), err: errors.New("bad message")}
	listener := &PubSubListener{}
	listener.SetCommand(cmd)
	listener.SetTimeout(time.Minute)

	err := listener.Process(context.Background(), "2", []byte("garbage"))
	assert.ErrorContains(t, err, "bad message")
	assert.False(t, IsPermanent(err))
	assert.True(t, cmd.hasDeadline)
}

func TestListenerPermanentFailure(t *testing.T) {
	for name, cause := range map[string]error{
		"bad message": fmt.Errorf("%w: no video_url", model.ErrInvalidIngestMessage),
		"not a video": fmt.Errorf("%w: videos/x.mp4", model.ErrNotAVideo),
	} {
		t.Run(name, func(t *testing.T) {
			cmd := &echoCommand{BaseCommand: *cor.NewBaseCommand("echo"), err: cause}
			listener := &PubSubListener{}
			listener.SetCommand(cmd)

			err := listener.Process(context.Background(), "4", []byte("{}"))
			assert.True(t, IsPermanent(err))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(fmt.Errorf("%w: 503", model.ErrVideoDownload)))
	assert.True(t, IsPermanent(errors.Join(errors.New("other"), model.ErrNotAVideo)))
}

func TestListenerKeepsFirstCommand(t *testing.T) {
	first := &echoCommand{BaseCommand: *cor.NewBaseCommand("first")}
	second := &echoCommand{BaseCommand: *cor.NewBaseCommand("second")}
	listener := &PubSubListener{}
	listener.SetCommand(first)
	listener.SetCommand(second)

	listener.Process(context.Background(), "3", []byte("{}"))
	assert.Len(t, first.seen, 1)
	assert.Empty(t, second.seen)
}
