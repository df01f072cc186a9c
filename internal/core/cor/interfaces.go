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

// Package cor (Chain of Responsibility) holds the building blocks used by the
// video ingest and segment translation workflows. A workflow is a Chain of
// Commands sharing a single Context: each command reads what it needs from the
// context, does one unit of work and writes its result back.
package cor

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used by BaseChain to pipe the output of one
// command into the input of the next.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// ErrCommandNotExecutable is recorded when a chain reaches a command whose
// preconditions are not met by the context.
var ErrCommandNotExecutable = errors.New("command not executable")

// Context is the shared state of one workflow execution.
type Context interface {
	// SetContext replaces the Go context. The chain uses it to nest spans.
	SetContext(ctx context.Context)
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value any) Context
	Get(key string) any
	Remove(key string)

	// AddError records an error raised by the named command. Errors are kept
	// in the order they were recorded.
	AddError(key string, err error)
	GetErrors() []CommandError
	HasErrors() bool
	// Err joins every recorded error, or returns nil.
	Err() error

	// AddTempFile registers a path that Close removes.
	AddTempFile(file string)
	GetTempFiles() []string
	Close()
}

// CommandError ties an error to the command that produced it.
type CommandError struct {
	Command string
	Err     error
}

func (e CommandError) Error() string {
	return e.Command + ": " + e.Err.Error()
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// Executable is anything with a unit of work to run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a named, instrumented unit of work.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable reports whether the context carries what Execute needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered list of commands. A chain is itself a Command, so chains
// can be nested.
type Chain interface {
	Command

	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
