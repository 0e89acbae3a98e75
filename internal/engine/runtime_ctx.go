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
	"go.starlark.net/starlark"

	"github.com/mdref-project/mdref/internal/document"
)

// getCtx returns the ctx object passed to a registered check callback.
//
// Make sure to update docs/checks.md whenever this function is modified.
func getCtx(cc *checkContext) starlark.Value {
	docs := make([]starlark.Value, len(cc.docs))
	for i, d := range cc.docs {
		docs[i] = documentValue(d)
	}
	return toValue("ctx", starlark.StringDict{
		"documents": starlark.NewList(docs),
		// Implemented in runtime_ctx_emit.go
		"emit": toValue("ctx.emit", starlark.StringDict{
			"finding": starlark.NewBuiltin("ctx.emit.finding", ctxEmitFinding),
		}),
		"vars": toValue("ctx.vars", starlark.StringDict{
			"get": starlark.NewBuiltin("ctx.vars.get", ctxVarsGet),
		}),
	})
}

// documentValue converts a parsed document to its Starlark representation.
func documentValue(d *document.Document) starlark.Value {
	lines := make([]starlark.Value, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = starlark.String(l)
	}
	headings := make([]starlark.Value, len(d.Headings))
	for i, h := range d.Headings {
		headings[i] = headingValue(h)
	}
	toc := make([]starlark.Value, len(d.TOC))
	for i, e := range d.TOC {
		toc[i] = toValue("toc_entry", starlark.StringDict{
			"text":   starlark.String(e.Text),
			"anchor": starlark.String(e.Anchor),
			"span":   spanValue(e.Span),
		})
	}
	fences := make([]starlark.Value, len(d.Fences))
	for i, f := range d.Fences {
		var closeSpan starlark.Value = starlark.None
		if f.Terminated {
			closeSpan = spanValue(f.Close)
		}
		fences[i] = toValue("fence", starlark.StringDict{
			"lang":       starlark.String(f.Lang),
			"terminated": starlark.Bool(f.Terminated),
			"open":       spanValue(f.Open),
			"close":      closeSpan,
		})
	}
	links := make([]starlark.Value, len(d.Links))
	for i, l := range d.Links {
		links[i] = toValue("link", starlark.StringDict{
			"text":   starlark.String(l.Text),
			"target": starlark.String(l.Target),
			"image":  starlark.Bool(l.Image),
			"span":   spanValue(l.Span),
		})
	}
	var tocHeading starlark.Value = starlark.None
	if d.TOCHeading != nil {
		tocHeading = headingValue(*d.TOCHeading)
	}
	return toValue("document", starlark.StringDict{
		"path":        starlark.String(d.Path),
		"lines":       starlark.NewList(lines),
		"headings":    starlark.NewList(headings),
		"toc":         starlark.NewList(toc),
		"toc_heading": tocHeading,
		"fences":      starlark.NewList(fences),
		"links":       starlark.NewList(links),
	})
}

func headingValue(h document.Heading) starlark.Value {
	return toValue("heading", starlark.StringDict{
		"level":  starlark.MakeInt(h.Level),
		"text":   starlark.String(h.Text),
		"anchor": starlark.String(h.Anchor),
		"span":   spanValue(h.Span),
	})
}

// spanValue renders a span as ((line, col), (line, col)), the same shape
// ctx.emit.finding() accepts.
func spanValue(s document.Span) starlark.Value {
	return starlark.Tuple{
		starlark.Tuple{starlark.MakeInt(s.Start.Line), starlark.MakeInt(s.Start.Col)},
		starlark.Tuple{starlark.MakeInt(s.End.Line), starlark.MakeInt(s.End.Col)},
	}
}
