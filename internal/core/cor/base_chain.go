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

package cor

import (
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain runs its commands in order, one span per command, under a parent
// span for the chain.
//
// After each command the value stored under CtxOut, if any, is moved to CtxIn,
// which turns the chain into a pipeline. Unless ContinueOnFailure is set, the chain
// stops as soon as the context holds an error. A command whose IsExecutable
// returns false records ErrCommandNotExecutable.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// Commands returns the names of the commands in execution order.
func (c *BaseChain) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for _, command := range c.commands {
		names = append(names, command.GetName())
	}
	return names
}

// IsExecutable only needs a Go context; the first command validates the input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()
	// Restore the caller's context so nested chains keep their span tree.
	defer chCtx.SetContext(parentCtx)

	for _, command := range c.commands {
		if chCtx.HasErrors() && !c.continueOnFailure {
			break
		}
		if err := outerCtx.Err(); err != nil {
			chCtx.AddError(c.GetName(), err)
			break
		}

		commandCtx, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		errorsBefore := len(chCtx.GetErrors())

		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandCtx)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)
		} else {
			chCtx.AddError(command.GetName(), fmt.Errorf("%w: %s", ErrCommandNotExecutable, command.GetName()))
		}

		if errs := chCtx.GetErrors(); len(errs) > errorsBefore {
			last := errs[len(errs)-1]
			commandSpan.RecordError(last.Err)
			commandSpan.SetStatus(codes.Error, last.Error())
		} else {
			commandSpan.SetStatus(codes.Ok, "")
		}
		commandSpan.End()

		// A command without output leaves the current input in place.
		if out := chCtx.Get(CtxOut); out != nil {
			chCtx.Add(CtxIn, out)
			chCtx.Remove(CtxOut)
		}
	}

	if chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	} else {
		chainSpan.SetStatus(codes.Ok, "")
	}
}
