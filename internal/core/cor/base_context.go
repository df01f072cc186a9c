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
	"context"
	"errors"
	"log/slog"
	"os"
)

// BaseContext is the default Context. It is not safe for concurrent use; a
// workflow execution owns its context.
type BaseContext struct {
	data      map[string]any
	errors    []CommandError
	tempFiles []string
	context   context.Context
}

// NewBaseContext returns an empty context bound to ctx.
func NewBaseContext(ctx context.Context) Context {
	return &BaseContext{
		data:      make(map[string]any),
		errors:    make([]CommandError, 0),
		tempFiles: make([]string, 0),
		context:   ctx,
	}
}

func (c *BaseContext) SetContext(ctx context.Context) {
	c.context = ctx
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes every registered temp file. Missing files are ignored.
func (c *BaseContext) Close() {
	for _, file := range c.tempFiles {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove temporary file", "file", file, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

func (c *BaseContext) Add(key string, value any) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) any {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

func (c *BaseContext) AddError(key string, err error) {
	if err == nil {
		return
	}
	c.errors = append(c.errors, CommandError{Command: key, Err: err})
}

func (c *BaseContext) GetErrors() []CommandError {
	return c.errors
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

func (c *BaseContext) Err() error {
	if len(c.errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(c.errors))
	for _, e := range c.errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}
