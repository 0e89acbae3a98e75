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

// Package reporting renders engine findings for the current environment.
package reporting

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sethvargo/go-githubactions"

	"github.com/mdref-project/mdref/internal/document"
	"github.com/mdref-project/mdref/internal/engine"
)

// Report is a closable engine.Report.
type Report interface {
	io.Closer
	engine.Report
}

// Get returns the right reporting implementation based on the current
// environment.
func Get(ctx context.Context) (*MultiReport, error) {
	r := &MultiReport{}

	// The following reporters all emit to stdout so they are mutually
	// exclusive.
	switch {
	case os.Getenv("GITHUB_RUN_ID") != "":
		// On GitHub Actions. Emits GitHub Workflows commands.
		r.Reporters = append(r.Reporters, &github{
			action: githubactions.New(githubactions.WithWriter(os.Stdout)),
		})
	case os.Getenv("TERM") != "dumb" && isatty.IsTerminal(os.Stderr.Fd()):
		// Active terminal. Colors! This includes VSCode's integrated
		// terminal.
		r.Reporters = append(r.Reporters, &interactive{
			out: colorable.NewColorableStdout(),
		})
	default:
		// Anything else, e.g. redirected output.
		r.Reporters = append(r.Reporters, &basic{out: os.Stdout})
	}

	return r, nil
}

type basic struct {
	out io.Writer
}

func (b *basic) Close() error {
	return nil
}

func (b *basic) EmitFinding(ctx context.Context, check string, level engine.Level, message, root, file string, s document.Span, replacements []string) error {
	if file != "" {
		if s.Start.Line > 0 {
			_, err := fmt.Fprintf(b.out, "[%s/%s] %s(%d): %s\n", check, level, file, s.Start.Line, message)
			return err
		}
		_, err := fmt.Fprintf(b.out, "[%s/%s] %s: %s\n", check, level, file, message)
		return err
	}
	_, err := fmt.Fprintf(b.out, "[%s/%s] %s\n", check, level, message)
	return err
}

func (b *basic) CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, level engine.Level, err error) {
	if err != nil {
		level = engine.Error
	}
	l := string(level)
	if level == "" || level == engine.Notice {
		l = "success"
	}
	if err != nil {
		fmt.Fprintf(b.out, "- %s (%s in %s): %s\n", check, l, d.Round(time.Millisecond), err)
	} else {
		fmt.Fprintf(b.out, "- %s (%s in %s)\n", check, l, d.Round(time.Millisecond))
	}
}

func (b *basic) Print(ctx context.Context, check, file string, line int, message string) {
	if check != "" {
		fmt.Fprintf(b.out, "- %s [%s:%d] %s\n", check, file, line, message)
	} else {
		fmt.Fprintf(b.out, "[%s:%d] %s\n", file, line, message)
	}
}

// github is the Report implementation when running inside a GitHub Actions
// workflow. It emits workflow commands so findings surface as annotations on
// the right file and line.
type github struct {
	action *githubactions.Action
}

func (g *github) Close() error {
	return nil
}

func (g *github) EmitFinding(ctx context.Context, check string, level engine.Level, message, root, file string, s document.Span, replacements []string) error {
	fields := map[string]string{"title": check}
	if file != "" {
		fields["file"] = file
		if s.Start.Line > 0 {
			fields["line"] = strconv.Itoa(s.Start.Line)
			if s.Start.Col > 0 {
				fields["col"] = strconv.Itoa(s.Start.Col)
			}
			if s.End.Line > 0 {
				fields["endLine"] = strconv.Itoa(s.End.Line)
				if s.End.Col > 0 {
					fields["endColumn"] = strconv.Itoa(s.End.Col)
				}
			}
		}
	}
	a := g.action.WithFieldsMap(fields)
	switch level {
	case engine.Error:
		a.Errorf("%s", message)
	case engine.Warning:
		a.Warningf("%s", message)
	default:
		a.Noticef("%s", message)
	}
	return nil
}

func (g *github) CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, l engine.Level, err error) {
}

func (g *github) Print(ctx context.Context, check, file string, line int, message string) {
	// Use debug here instead of notice since the file/line reference comes
	// from the Starlark entry point, which may not even be in the delta
	// GitHub can annotate.
	if check != "" {
		g.action.Debugf("%s [%s:%d] %s", check, file, line, message)
	} else {
		g.action.Debugf("[%s:%d] %s", file, line, message)
	}
}

type interactive struct {
	out io.Writer
}

func (i *interactive) Close() error {
	return nil
}

func (i *interactive) EmitFinding(ctx context.Context, check string, level engine.Level, message, root, file string, s document.Span, replacements []string) error {
	c := levelColor[level]
	if file == "" {
		_, err := fmt.Fprintf(i.out, "%s[%s%s%s/%s%s%s] %s\n", reset, fgHiCyan, check, reset, c, level, reset, message)
		return err
	}
	if s.Start.Line == 0 {
		_, err := fmt.Fprintf(i.out, "%s[%s%s%s/%s%s%s] %s: %s\n", reset, fgHiCyan, check, reset, c, level, reset, file, message)
		return err
	}
	fmt.Fprintf(i.out, "%s[%s%s%s/%s%s%s] %s(%d): %s\n", reset, fgHiCyan, check, reset, c, level, reset, file, s.Start.Line, message)
	return i.excerpt(c, root, file, s)
}

// excerpt prints the offending region and a bit of context.
func (i *interactive) excerpt(c ansiCode, root, file string, s document.Span) error {
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return err
	}
	lines := splitLines(b)
	end := s.End.Line
	if end == 0 {
		end = s.Start.Line
	}
	if s.Start.Line > len(lines) {
		// The span is out of bounds, the document changed under us.
		return nil
	}
	fmt.Fprintf(i.out, "\n")
	for l := s.Start.Line - 2; l <= end && l < len(lines); l++ {
		if l < 0 {
			continue
		}
		switch {
		case l >= s.Start.Line-1 && l <= end-1:
			fmt.Fprintf(i.out, "  %s%s%s\n", c, lines[l], reset)
		default:
			fmt.Fprintf(i.out, "  %s\n", lines[l])
		}
	}
	_, err = fmt.Fprintf(i.out, "\n")
	return err
}

func (i *interactive) CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, level engine.Level, err error) {
	if err != nil {
		level = engine.Error
	}
	c := levelColor[level]
	l := string(level)
	if level == "" || level == engine.Notice {
		l = "success"
	}
	if err != nil {
		fmt.Fprintf(i.out, "%s- %s%s%s (%s in %s): %s\n", reset, c, check, reset, l, d.Round(time.Millisecond), err)
	} else {
		fmt.Fprintf(i.out, "%s- %s%s%s (%s in %s)\n", reset, c, check, reset, l, d.Round(time.Millisecond))
	}
}

func (i *interactive) Print(ctx context.Context, check, file string, line int, message string) {
	if check != "" {
		fmt.Fprintf(i.out, "%s- %s%s %s[%s%s:%d%s] %s%s%s\n", reset, fgYellow, check, reset, fgHiBlue, file, line, reset, bold, message, reset)
	} else {
		fmt.Fprintf(i.out, "%s[%s%s:%d%s] %s%s%s\n", reset, fgHiBlue, file, line, reset, bold, message, reset)
	}
}

func splitLines(b []byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, string(b[start:]))
	}
	return out
}

var levelColor = map[engine.Level]ansiCode{
	engine.Notice:  fgGreen,
	engine.Warning: fgYellow,
	engine.Error:   fgRed,
	engine.Nothing: fgGreen,
}
