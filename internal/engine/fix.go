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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/mdref-project/mdref/internal/document"
)

// Fix rewrites documents in place: the table of contents block is
// regenerated from the actual headings and trailing whitespace is stripped
// outside code fences. Fenced content is never modified.
//
// It returns the root-relative paths of the documents that were (or, with
// dryRun, would have been) rewritten.
func Fix(ctx context.Context, o *Options, dryRun bool) ([]string, error) {
	root, err := resolveRoot(o.Dir)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root, o.config)
	if err != nil {
		return nil, err
	}
	docs, err := discoverDocuments(ctx, o, root, cfg)
	if err != nil {
		return nil, err
	}
	var changed []string
	for _, d := range docs {
		fixed := formatDocument(d)
		if slices.Equal(fixed, d.Lines) {
			continue
		}
		changed = append(changed, d.Path)
		if dryRun {
			continue
		}
		data := []byte(strings.Join(fixed, "\n") + "\n")
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(d.Path)), data, 0o644); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// formatDocument returns the formatted lines of a document. The input is not
// modified.
func formatDocument(d *document.Document) []string {
	lines := slices.Clone(d.Lines)
	fenced := fencedLines(d)
	for i, l := range lines {
		if !fenced[i+1] {
			lines[i] = strings.TrimRight(l, " \t")
		}
	}
	if d.TOCHeading == nil {
		return lines
	}
	return replaceTOCBlock(d, lines)
}

// fencedLines returns the set of 1-based line numbers inside code fences,
// fence markers included.
func fencedLines(d *document.Document) map[int]bool {
	out := map[int]bool{}
	for _, f := range d.Fences {
		end := f.Close.Start.Line
		if !f.Terminated {
			end = len(d.Lines)
		}
		for l := f.Open.Start.Line; l <= end; l++ {
			out[l] = true
		}
	}
	return out
}

// tocListItemRe matches a markdown list item, ordered or unordered.
var tocListItemRe = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)

// replaceTOCBlock swaps the list block under the TOC heading with entries
// derived from the section headings.
func replaceTOCBlock(d *document.Document, lines []string) []string {
	start := d.TOCHeading.Span.Start.Line // 1-based heading line
	// The block covers the contiguous run of blank and list-item lines
	// following the heading. Anything else, prose included, stays put.
	end := start
	for l := start + 1; l <= len(lines); l++ {
		if strings.TrimSpace(lines[l-1]) != "" && !tocListItemRe.MatchString(lines[l-1]) {
			break
		}
		end = l
	}
	block := []string{""}
	sections := sectionHeadings(d)
	for _, h := range sections {
		block = append(block, fmt.Sprintf("- [%s](#%s)", h.Text, h.Anchor))
	}
	if len(sections) > 0 {
		block = append(block, "")
	}
	out := make([]string, 0, len(lines))
	out = append(out, lines[:start]...)
	out = append(out, block...)
	out = append(out, lines[end:]...)
	return out
}
