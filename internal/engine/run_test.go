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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mdref-project/mdref/internal/document"
)

func TestRun_EmptyDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	o := Options{Report: &reportNoPrint{t: t}, Dir: root, AllFiles: true}
	if err := Run(context.Background(), &o); err != nil {
		t.Fatal(err)
	}
}

func TestRun_Pass(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Overview\n\nAll good here.\n")
	r := &reportEmitNoPrint{reportNoPrint: reportNoPrint{t: t}}
	o := Options{Report: r, Dir: root, AllFiles: true}
	if err := Run(context.Background(), &o); err != nil {
		t.Fatal(err)
	}
	if len(r.findings) != 0 {
		t.Fatalf("unexpected findings: %# v", r.findings)
	}
}

func TestRun_FailOnError(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Overview\n\n```zig\nconst x = 1;\n")
	r := &reportEmitNoPrint{reportNoPrint: reportNoPrint{t: t}}
	o := Options{Report: r, Dir: root, AllFiles: true}
	err := Run(context.Background(), &o)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
	want := []finding{
		{
			Check:   "fences",
			Level:   Error,
			Message: "unterminated code fence",
			Root:    root,
			File:    "README.md",
			Span:    document.Span{Start: document.Cursor{Line: 3, Col: 1}, End: document.Cursor{Line: 3, Col: 6}},
		},
	}
	if diff := cmp.Diff(want, r.findings); diff != "" {
		t.Fatalf("unexpected findings (-want +got):\n%s", diff)
	}
}

func TestRun_SpecificFileNotMarkdown(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "main.zig", "const x = 1;\n")
	o := Options{Report: &reportNoPrint{t: t}, Dir: root, Files: []string{"main.zig"}}
	err := Run(context.Background(), &o)
	if err == nil || !strings.Contains(err.Error(), "not a markdown document") {
		t.Fatalf("expected markdown error, got %v", err)
	}
}

func TestRun_IgnorePatterns(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "mdref.yaml", "ignore:\n  - \"vendor/\"\n")
	writeFile(t, root, "vendor/broken.md", "# Broken\n\n```\n")
	writeFile(t, root, "README.md", "# Overview\n")
	r := &reportEmitNoPrint{reportNoPrint: reportNoPrint{t: t}}
	o := Options{Report: r, Dir: root, AllFiles: true}
	if err := Run(context.Background(), &o); err != nil {
		t.Fatal(err)
	}
}

func TestRun_UndeclaredVar(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "mdref.yaml", "vars:\n  channel: stable\n")
	writeFile(t, root, "README.md", "# Overview\n")
	o := Options{
		Report:   &reportNoPrint{t: t},
		Dir:      root,
		AllFiles: true,
		Vars:     map[string]string{"arch": "x86_64"},
	}
	err := Run(context.Background(), &o)
	if err == nil || err.Error() != "var not declared in mdref.yaml: arch" {
		t.Fatalf("expected undeclared var error, got %v", err)
	}
}

func TestRun_AbsoluteEntryPoint(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Overview\n")
	o := Options{
		Report:     &reportNoPrint{t: t},
		Dir:        root,
		AllFiles:   true,
		EntryPoint: filepath.Join(root, "mdref.star"),
	}
	err := Run(context.Background(), &o)
	if err == nil || err.Error() != "entry point file must not be an absolute path" {
		t.Fatalf("expected entry point error, got %v", err)
	}
}

func TestCheckFilter(t *testing.T) {
	t.Parallel()
	names := func(checks []*registeredCheck) []string {
		var out []string
		for _, c := range checks {
			out = append(out, c.name)
		}
		return out
	}
	checks := []*registeredCheck{
		{name: "toc"},
		{name: "fences"},
		{name: "links"},
	}
	data := []struct {
		name    string
		filter  CheckFilter
		want    []string
		wantErr string
	}{
		{
			name: "no filter",
			want: []string{"toc", "fences", "links"},
		},
		{
			name:   "allowlist",
			filter: CheckFilter{AllowList: []string{"fences"}},
			want:   []string{"fences"},
		},
		{
			name:   "denylist",
			filter: CheckFilter{DenyList: []string{"fences"}},
			want:   []string{"toc", "links"},
		},
		{
			name:    "allowed and denied",
			filter:  CheckFilter{AllowList: []string{"toc"}, DenyList: []string{"toc"}},
			wantErr: "checks cannot be both allowed and denied: toc",
		},
		{
			name:    "unknown check",
			filter:  CheckFilter{AllowList: []string{"nonexistent"}},
			wantErr: "check does not exist: nonexistent",
		},
		{
			name:    "unknown checks",
			filter:  CheckFilter{DenyList: []string{"bbb", "aaa"}},
			wantErr: "checks do not exist: aaa, bbb",
		},
		{
			name:    "everything filtered out",
			filter:  CheckFilter{DenyList: []string{"toc", "fences", "links"}},
			wantErr: "no checks to run",
		},
	}
	for i := range data {
		i := i
		t.Run(data[i].name, func(t *testing.T) {
			t.Parallel()
			got, err := data[i].filter.filter(checks)
			if data[i].wantErr != "" {
				if err == nil || err.Error() != data[i].wantErr {
					t.Fatalf("want error %q, got %v", data[i].wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(data[i].want, names(got)); diff != "" {
				t.Fatalf("unexpected checks (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "docs/b.md", "# B\n")
	writeFile(t, root, "a.md", "# A\n")

	got, err := normalizeFiles([]string{filepath.Join(root, "docs", "b.md"), "a.md"}, root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a.md", "docs/b.md"}, got); diff != "" {
		t.Fatalf("unexpected files (-want +got):\n%s", diff)
	}

	if _, err = normalizeFiles([]string{filepath.Join(root, "..", "outside.md")}, root); err == nil {
		t.Fatal("expected error for file outside root")
	}
	if _, err = normalizeFiles([]string{"docs"}, root); err == nil {
		t.Fatal("expected error for directory")
	}
	if _, err = normalizeFiles([]string{"missing.md"}, root); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIsMarkdown(t *testing.T) {
	t.Parallel()
	data := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"notes.markdown", true},
		{"UPPER.MD", true},
		{"main.zig", false},
		{"md", false},
		{"", false},
	}
	for _, line := range data {
		if got := isMarkdown(line.path); got != line.want {
			t.Errorf("isMarkdown(%q) = %t, want %t", line.path, got, line.want)
		}
	}
}

func TestCheckContextEmit(t *testing.T) {
	t.Parallel()
	r := &reportEmitNoPrint{reportNoPrint: reportNoPrint{t: t}}
	cc := &checkContext{name: "test", root: "/root", r: r}
	ctx := context.Background()

	if err := cc.emit(ctx, Level("bogus"), "msg", "f.md", document.Span{}, nil); err == nil {
		t.Fatal("expected invalid level error")
	}
	if err := cc.emit(ctx, Warning, "", "f.md", document.Span{}, nil); !errors.Is(err, errEmptyMessage) {
		t.Fatalf("expected errEmptyMessage, got %v", err)
	}
	if err := cc.emit(ctx, Notice, "low", "f.md", document.Span{}, nil); err != nil {
		t.Fatal(err)
	}
	if err := cc.emit(ctx, Error, "high", "f.md", document.Span{}, nil); err != nil {
		t.Fatal(err)
	}
	if err := cc.emit(ctx, Warning, "mid", "f.md", document.Span{}, nil); err != nil {
		t.Fatal(err)
	}
	if got := cc.highestLevel(); got != Error {
		t.Fatalf("highestLevel() = %q, want %q", got, Error)
	}
}

func TestLevelSet(t *testing.T) {
	t.Parallel()
	var l Level
	if err := l.Set("warning"); err != nil || l != Warning {
		t.Fatalf("Set(warning) = %v, %q", err, l)
	}
	if err := l.Set("fatal"); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// finding is the flattened form of an EmitFinding call, for comparisons.
type finding struct {
	Check        string
	Level        Level
	Message      string
	Root         string
	File         string
	Span         document.Span
	Replacements []string
}

// reportNoPrint fails the test on any finding or print call.
type reportNoPrint struct {
	t testing.TB
}

func (r *reportNoPrint) EmitFinding(ctx context.Context, check string, level Level, message, root, file string, s document.Span, replacements []string) error {
	r.t.Errorf("unexpected finding: %s: %s, %q, %s, %s, %# v, %v", check, level, message, root, file, s, replacements)
	return errors.New("not implemented")
}

func (r *reportNoPrint) CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, l Level, err error) {
}

func (r *reportNoPrint) Print(ctx context.Context, check, file string, line int, message string) {
	r.t.Errorf("unexpected print: %s %s(%d): %s", check, file, line, message)
}

// reportEmitNoPrint collects findings and still fails the test on print.
type reportEmitNoPrint struct {
	reportNoPrint
	mu       sync.Mutex
	findings []finding
}

func (r *reportEmitNoPrint) EmitFinding(ctx context.Context, check string, level Level, message, root, file string, s document.Span, replacements []string) error {
	r.mu.Lock()
	r.findings = append(r.findings, finding{
		Check:        check,
		Level:        level,
		Message:      message,
		Root:         root,
		File:         file,
		Span:         s,
		Replacements: replacements,
	})
	r.mu.Unlock()
	return nil
}

// reportEmitPrint additionally collects print calls.
type reportEmitPrint struct {
	reportEmitNoPrint
	printMu sync.Mutex
	b       strings.Builder
}

func (r *reportEmitPrint) Print(ctx context.Context, check, file string, line int, message string) {
	r.printMu.Lock()
	fmt.Fprintf(&r.b, "[%s:%d] %s\n", file, line, message)
	r.printMu.Unlock()
}
