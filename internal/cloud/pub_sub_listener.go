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
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/RichNachos/tower-of-babel-video/internal/core/cor"
	"github.com/RichNachos/tower-of-babel-video/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener hands every message of a subscription to a command.
//
// The message body is placed under cor.CtxIn. A message is acknowledged when
// the command succeeds or fails permanently (see IsPermanent), since
// redelivering it cannot change the outcome. Any other failure is negatively
// acknowledged and left to the subscription's retry and dead letter policy.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
	timeout      time.Duration
}

// NewPubSubListener binds subscriptionID. A nil command can be attached later
// with SetCommand, once the workflows are built.
func NewPubSubListener(pubsubClient *pubsub.Client, subscriptionID string, command cor.Command) (*PubSubListener, error) {
	return &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}, nil
}

// SetCommand attaches command unless one is already set.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// SetTimeout bounds the processing of a single message. Zero means no bound.
func (m *PubSubListener) SetTimeout(timeout time.Duration) {
	m.timeout = timeout
}

// Listen receives in a background goroutine until ctx is cancelled.
func (m *PubSubListener) Listen(ctx context.Context) {
	if m.command == nil {
		slog.WarnContext(ctx, "listener has no command, not listening", "subscription", m.subscription.ID())
		return
	}
	slog.InfoContext(ctx, "listening", "subscription", m.subscription.ID())

	go func() {
		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			if err := m.Process(msgCtx, msg.ID, msg.Data); err != nil && !IsPermanent(err) {
				msg.Nack()
				return
			}
			msg.Ack()
		})
		if err != nil {
			slog.ErrorContext(ctx, "error receiving messages", "subscription", m.subscription.ID(), "error", err)
		}
	}()
}

// IsPermanent reports whether err comes from the message itself rather than
// from a dependency, so a retry would fail the same way.
func IsPermanent(err error) bool {
	return errors.Is(err, model.ErrInvalidIngestMessage) || errors.Is(err, model.ErrNotAVideo)
}

// Process runs the command on one message body and returns the chain's
// errors, if any.
func (m *PubSubListener) Process(ctx context.Context, id string, data []byte) error {
	tracer := otel.Tracer("message-listener")
	spanCtx, span := tracer.Start(ctx, "receive-message")
	defer span.End()
	span.SetAttributes(attribute.String("msg.id", id), attribute.String("msg", string(data)))

	if m.timeout > 0 {
		var cancel context.CancelFunc
		spanCtx, cancel = context.WithTimeout(spanCtx, m.timeout)
		defer cancel()
	}

	chainCtx := cor.NewBaseContext(spanCtx)
	defer chainCtx.Close()
	chainCtx.Add(cor.CtxIn, string(data))

	m.command.Execute(chainCtx)

	if chainCtx.HasErrors() {
		span.SetStatus(codes.Error, "failed")
		for _, e := range chainCtx.GetErrors() {
			slog.ErrorContext(spanCtx, "error executing chain", "message", id, "command", e.Command, "error", e.Err)
		}
		return chainCtx.Err()
	}
	span.SetStatus(codes.Ok, "success")
	slog.InfoContext(spanCtx, "message processed", "message", id)
	return nil
}
