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
	"errors"

	"go.starlark.net/starlark"

	"github.com/mdref-project/mdref/internal/document"
)

// ctxEmitFinding implements native function ctx.emit.finding().
//
// Make sure to update docs/checks.md whenever this function is modified.
func ctxEmitFinding(th *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var arglevel starlark.String
	var argmessage starlark.String
	var argfile starlark.String
	var argspan starlark.Tuple
	var argreplacements starlark.Tuple
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"level", &arglevel,
		"message", &argmessage,
		"file?", &argfile,
		"span?", &argspan,
		"replacements?", &argreplacements,
	); err != nil {
		return nil, err
	}
	s, ok := th.Local(threadState).(*runState)
	if !ok {
		return nil, errors.New("ctx.emit.finding must be called from a check")
	}
	span := starlarkToSpan(argspan)
	if span.Start.Line == -1 || span.End.Line == -1 {
		return nil, errors.New("invalid span, expect ((line, col), (line, col))")
	}
	replacements := tupleToStrings(argreplacements)
	if replacements == nil {
		return nil, errors.New("invalid replacements, expect tuple of str")
	}
	if err := s.cc.emit(s.ctx, Level(arglevel), string(argmessage), string(argfile), span, replacements); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// ctxVarsGet implements native function ctx.vars.get().
//
// Make sure to update docs/checks.md whenever this function is modified.
func ctxVarsGet(th *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var argname starlark.String
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &argname,
	); err != nil {
		return nil, err
	}
	if argname == "" {
		return nil, errors.New("for parameter \"name\": must not be empty")
	}
	s, ok := th.Local(threadState).(*runState)
	if !ok {
		return nil, errors.New("ctx.vars.get must be called from a check")
	}
	value, ok := s.cc.vars[string(argname)]
	if !ok {
		return nil, errors.New("unknown variable " + string(argname))
	}
	return starlark.String(value), nil
}

func starlarkToSpan(t starlark.Tuple) document.Span {
	s := document.Span{Start: document.Cursor{Line: -1}, End: document.Cursor{Line: -1}}
	if len(t) == 0 {
		return document.Span{}
	}
	if l := len(t); l >= 1 && l <= 2 {
		s.Start.Line, s.Start.Col = tupleTo2Int(t[0])
		if l == 2 {
			s.End.Line, s.End.Col = tupleTo2Int(t[1])
		} else {
			s.End = s.Start
		}
	}
	return s
}

// tupleToStrings returns nil on failure.
func tupleToStrings(t starlark.Tuple) []string {
	out := make([]string, len(t))
	for i := range t {
		s, ok := t[i].(starlark.String)
		if !ok {
			return nil
		}
		out[i] = string(s)
	}
	return out
}

// tupleTo2Int returns -1 on failure.
func tupleTo2Int(v starlark.Value) (int, int) {
	t, ok := v.(starlark.Tuple)
	if !ok || len(t) != 2 {
		return -1, -1
	}
	i := valueToInt(t[0])
	j := valueToInt(t[1])
	if j == -1 {
		i = -1
	}
	return i, j
}

// valueToInt returns -1 on failure.
func valueToInt(v starlark.Value) int {
	k, ok := v.(starlark.Int)
	if !ok {
		return -1
	}
	j, ok := k.Int64()
	const maxInt = int64(int(^uint(0) >> 1))
	if !ok || j < 0 || j > maxInt {
		return -1
	}
	return int(j)
}
