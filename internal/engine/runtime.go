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
	"strings"

	"go.starlark.net/lib/json"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// getPredeclared returns the predeclared Starlark symbols in the runtime.
//
// The interpreter already includes all the symbols described at
// https://pkg.go.dev/go.starlark.net/starlark#Universe.
func getPredeclared() starlark.StringDict {
	return starlark.StringDict{
		"mdref": toValue("mdref", starlark.StringDict{
			"register_check": starlark.NewBuiltin("register_check", registerCheck),
			"version": starlark.Tuple{
				starlark.MakeInt(Version[0]), starlark.MakeInt(Version[1]), starlark.MakeInt(Version[2]),
			},
		}),

		"json": json.Module,
		// struct is a helper function that enables users to create seamless
		// object instances.
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

// registerCheck implements native function mdref.register_check().
//
// Make sure to update docs/checks.md whenever this function is modified.
func registerCheck(th *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var argimpl starlark.Callable
	var argname starlark.String
	var argdoc starlark.String
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"impl", &argimpl,
		"name?", &argname,
		"doc?", &argdoc,
	); err != nil {
		return nil, err
	}
	s, ok := th.Local(threadState).(*loadState)
	if !ok || s.doneLoading {
		return nil, errors.New("can't register checks after the entry point is loaded")
	}
	c, err := newCustomCheck(argimpl, string(argname), string(argdoc))
	if err != nil {
		return nil, err
	}
	for _, existing := range s.checks {
		if existing.name == c.name {
			return nil, errors.New("a check named " + c.name + " was already registered")
		}
	}
	s.checks = append(s.checks, c)
	return starlark.None, nil
}

// customCheck is a check implemented by the Starlark entry point.
type customCheck struct {
	impl *starlark.Function
	name string
	doc  string
}

func newCustomCheck(impl starlark.Callable, name, doc string) (*customCheck, error) {
	if _, ok := impl.(*starlark.Builtin); ok {
		return nil, errors.New("\"impl\" must not be a built-in function")
	}
	fun, ok := impl.(*starlark.Function)
	if !ok || fun.NumParams() == 0 {
		return nil, errors.New("\"impl\" must be a function accepting one \"ctx\" argument")
	}
	if ctxParam, _ := fun.Param(0); ctxParam != "ctx" {
		return nil, errors.New("\"impl\"'s first parameter must be named \"ctx\"")
	}
	if fun.ParamDefault(0) != nil {
		return nil, errors.New("\"impl\" must not have a default value for the \"ctx\" parameter")
	}
	if fun.HasVarargs() {
		return nil, errors.New("\"impl\" must not accept *args")
	}
	if fun.HasKwargs() {
		return nil, errors.New("\"impl\" must not accept **kwargs")
	}
	// Check impl functions are called with only the ctx argument, so any
	// extra parameter needs a default.
	if fun.NumParams() > 1 && fun.ParamDefault(1) == nil {
		return nil, errors.New("\"impl\" cannot have required arguments besides \"ctx\"")
	}
	if name == "" {
		if fun.Name() == "lambda" {
			return nil, errors.New("\"name\" must be set when \"impl\" is a lambda")
		}
		name = strings.TrimPrefix(fun.Name(), "_")
	}
	return &customCheck{impl: fun, name: name, doc: doc}, nil
}

// run invokes the check callback with a fresh thread and ctx value.
func (c *customCheck) run(ctx context.Context, cc *checkContext) error {
	th := &starlark.Thread{
		Name: c.name,
		Print: func(th *starlark.Thread, msg string) {
			pos := th.CallFrame(1).Pos
			cc.r.Print(ctx, cc.name, pos.Filename(), int(pos.Line), msg)
		},
	}
	th.SetLocal(threadState, &runState{ctx: ctx, cc: cc})
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			th.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()
	if _, err := starlark.Call(th, c.impl, starlark.Tuple{getCtx(cc)}, nil); err != nil {
		return starlarkError(err)
	}
	return nil
}

// toValue converts a StringDict to a Value.
func toValue(name string, d starlark.StringDict) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String(name), d)
}
