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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mdref-project/mdref/internal/document"
)

func TestLoadCustomChecks_Missing(t *testing.T) {
	t.Parallel()
	checks, err := loadCustomChecks(t.TempDir(), DefaultEntryPoint)
	if err != nil {
		t.Fatal(err)
	}
	if checks != nil {
		t.Fatalf("expected no checks, got %v", checks)
	}
}

func TestLoadCustomChecks_Errors(t *testing.T) {
	t.Parallel()
	data := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no registration",
			src:  "x = 1\n",
			want: "did you forget to call mdref.register_check?",
		},
		{
			name: "impl is a builtin",
			src:  "mdref.register_check(impl = print)\n",
			want: "\"impl\" must not be a built-in function",
		},
		{
			name: "no parameters",
			src: "def cb():\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n",
			want: "\"impl\" must be a function accepting one \"ctx\" argument",
		},
		{
			name: "first parameter not ctx",
			src: "def cb(content):\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n",
			want: "\"impl\"'s first parameter must be named \"ctx\"",
		},
		{
			name: "ctx with default",
			src: "def cb(ctx = None):\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n",
			want: "\"impl\" must not have a default value for the \"ctx\" parameter",
		},
		{
			name: "varargs",
			src: "def cb(ctx, *args):\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n",
			want: "\"impl\" must not accept *args",
		},
		{
			name: "kwargs",
			src: "def cb(ctx, **kwargs):\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n",
			want: "\"impl\" must not accept **kwargs",
		},
		{
			name: "required extra argument",
			src: "def cb(ctx, extra):\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n",
			want: "\"impl\" cannot have required arguments besides \"ctx\"",
		},
		{
			name: "anonymous lambda",
			src:  "mdref.register_check(impl = lambda ctx: None)\n",
			want: "\"name\" must be set when \"impl\" is a lambda",
		},
		{
			name: "duplicate name",
			src: "def cb(ctx):\n" +
				"    pass\n" +
				"mdref.register_check(impl = cb)\n" +
				"mdref.register_check(impl = cb)\n",
			want: "a check named cb was already registered",
		},
		{
			name: "load is disabled",
			src:  "load(\"other.star\", \"sym\")\n",
			want: "load() is not supported in the entry point",
		},
	}
	for i := range data {
		i := i
		t.Run(data[i].name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeFile(t, root, DefaultEntryPoint, data[i].src)
			_, err := loadCustomChecks(root, DefaultEntryPoint)
			if err == nil || !strings.Contains(err.Error(), data[i].want) {
				t.Fatalf("want error containing %q, got %v", data[i].want, err)
			}
		})
	}
}

func TestLoadCustomChecks_StripsUnderscore(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, DefaultEntryPoint,
		"def _hidden(ctx):\n"+
			"    pass\n"+
			"mdref.register_check(impl = _hidden, doc = \"does nothing\")\n")
	checks, err := loadCustomChecks(root, DefaultEntryPoint)
	if err != nil {
		t.Fatal(err)
	}
	if len(checks) != 1 || checks[0].name != "hidden" || checks[0].doc != "does nothing" {
		t.Fatalf("unexpected checks: %v", checks)
	}
}

func TestCustomCheck_Run(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "mdref.yaml", "vars:\n  channel: stable\n")
	writeFile(t, root, "guide.md", "# Guide\n")
	writeFile(t, root, DefaultEntryPoint,
		"def greeter(ctx):\n"+
			"    print(\"channel is \" + ctx.vars.get(name = \"channel\"))\n"+
			"    for doc in ctx.documents:\n"+
			"        h = doc.headings[0]\n"+
			"        ctx.emit.finding(\n"+
			"            level = \"notice\",\n"+
			"            message = \"saw \" + h.anchor,\n"+
			"            file = doc.path,\n"+
			"            span = h.span,\n"+
			"        )\n"+
			"\n"+
			"mdref.register_check(impl = greeter)\n")

	r := &reportEmitPrint{reportEmitNoPrint: reportEmitNoPrint{reportNoPrint: reportNoPrint{t: t}}}
	o := Options{
		Report:   r,
		Dir:      root,
		AllFiles: true,
		Filter:   CheckFilter{AllowList: []string{"greeter"}},
	}
	if err := Run(context.Background(), &o); err != nil {
		t.Fatal(err)
	}
	want := []finding{
		{
			Check:        "greeter",
			Level:        Notice,
			Message:      "saw guide",
			Root:         root,
			File:         "guide.md",
			Span:         document.Span{Start: document.Cursor{Line: 1, Col: 1}, End: document.Cursor{Line: 1, Col: 7}},
			Replacements: []string{},
		},
	}
	if diff := cmp.Diff(want, r.findings); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := r.b.String(); got != "[mdref.star:2] channel is stable\n" {
		t.Fatalf("unexpected print output: %q", got)
	}
}

func TestCustomCheck_Fail(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "guide.md", "# Guide\n")
	writeFile(t, root, DefaultEntryPoint,
		"def boom(ctx):\n"+
			"    fail(\"document is on fire\")\n"+
			"\n"+
			"mdref.register_check(impl = boom)\n")
	o := Options{
		Report:   &reportNoPrint{t: t},
		Dir:      root,
		AllFiles: true,
		Filter:   CheckFilter{AllowList: []string{"boom"}},
	}
	err := Run(context.Background(), &o)
	if err == nil || !strings.Contains(err.Error(), "document is on fire") {
		t.Fatalf("expected failure, got %v", err)
	}
	var bt BacktraceableError
	if !errors.As(err, &bt) {
		t.Fatal("expected a BacktraceableError")
	}
	if !strings.Contains(bt.Backtrace(), "mdref.star") {
		t.Fatalf("unexpected backtrace:\n%s", bt.Backtrace())
	}
}
