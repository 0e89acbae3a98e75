// Copyright 2025 The Mdref Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/mdref-project/mdref/internal/document"
)

// registeredCheck is a runnable check, either builtin or loaded from the
// Starlark entry point.
type registeredCheck struct {
	name string
	// doc is the one-paragraph documentation printed by "mdref doc".
	doc string
	run func(ctx context.Context, cc *checkContext) error
}

// checkContext is the per-run state handed to a check. It wraps the Report
// and tracks the highest emitted level.
type checkContext struct {
	name string
	root string
	docs []*document.Document
	vars map[string]string
	r    Report

	mu      sync.Mutex
	highest Level
}

var errEmptyMessage = errors.New("a message is required")

// emit forwards a finding to the report, recording its level.
func (cc *checkContext) emit(ctx context.Context, level Level, message, file string, s document.Span, replacements []string) error {
	if !level.isValid() {
		return errors.New("a valid level is required, use one of \"notice\", \"warning\" or \"error\"")
	}
	if message == "" {
		return errEmptyMessage
	}
	cc.mu.Lock()
	if level.rank() > cc.highest.rank() {
		cc.highest = level
	}
	cc.mu.Unlock()
	return cc.r.EmitFinding(ctx, cc.name, level, message, cc.root, file, s, replacements)
}

func (cc *checkContext) highestLevel() Level {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.highest
}
