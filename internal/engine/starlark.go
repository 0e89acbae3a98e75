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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

func starlarkOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		// Enable not-yet-standard Starlark features.
		Set:       true,
		While:     true,
		Recursion: true,
	}
}

// threadState is attached to every Starlark thread as a local.
const threadState = "mdref.state"

// loadState is the loading-time state of the entry point file.
type loadState struct {
	checks      []*customCheck
	doneLoading bool
}

// runState is attached to the thread that executes a check callback.
type runState struct {
	ctx context.Context
	cc  *checkContext
}

// loadCustomChecks executes the Starlark entry point and returns the checks
// it registered. A missing entry point is not an error.
func loadCustomChecks(root, entryPoint string) ([]*registeredCheck, error) {
	p := filepath.Join(root, entryPoint)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := &loadState{}
	th := &starlark.Thread{
		Name: entryPoint,
		Print: func(th *starlark.Thread, msg string) {
			pos := th.CallFrame(1).Pos
			fmt.Fprintf(os.Stderr, "[%s:%d] %s\n", pos.Filename(), pos.Line, msg)
		},
		Load: func(th *starlark.Thread, module string) (starlark.StringDict, error) {
			return nil, errors.New("load() is not supported in the entry point")
		},
	}
	th.SetLocal(threadState, s)
	if _, err := starlark.ExecFileOptions(starlarkOptions(), th, entryPoint, b, getPredeclared()); err != nil {
		return nil, starlarkError(err)
	}
	s.doneLoading = true
	if len(s.checks) == 0 {
		return nil, fmt.Errorf("%s: did you forget to call mdref.register_check?", entryPoint)
	}
	out := make([]*registeredCheck, 0, len(s.checks))
	for _, c := range s.checks {
		c := c
		out = append(out, &registeredCheck{
			name: c.name,
			doc:  c.doc,
			run:  c.run,
		})
	}
	return out, nil
}

// starlarkError attaches a usable backtrace to interpreter errors.
func starlarkError(err error) error {
	var ee *starlark.EvalError
	if errors.As(err, &ee) {
		return &evalError{ee}
	}
	return err
}
