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

// Package document models the structure of a Markdown reference document.
//
// The model is deliberately line oriented: checks report findings with
// line/column spans against the raw text, so the parser never normalizes or
// rewrites content. Only the structural elements that checks care about are
// extracted: ATX headings, table of contents entries, fenced code blocks and
// links.
package document

import (
	"bufio"
	"io"
	"os"
)

// Cursor is a position in a document. Line and Col are 1-based.
type Cursor struct {
	Line int
	Col  int
}

// Span is a region in a document. End is inclusive. A span with a zero End
// covers a single point.
type Span struct {
	Start Cursor
	End   Cursor
}

// Heading is an ATX heading ("## Types").
type Heading struct {
	// Level is the number of leading '#', between 1 and 6.
	Level int
	// Text is the heading text with markers and trailing '#' stripped.
	Text string
	// Anchor is the GitHub anchor slug for this heading, including the "-1",
	// "-2" suffixes GitHub appends to repeated slugs.
	Anchor string
	Span   Span
}

// TOCEntry is a list item in the table of contents that links to an anchor in
// the same document.
type TOCEntry struct {
	// Text is the link text.
	Text string
	// Anchor is the link target without the leading '#'.
	Anchor string
	Span   Span
}

// Fence is a fenced code block.
type Fence struct {
	// Lang is the info string on the opening fence, empty when untagged.
	Lang string
	// Open is the span of the opening fence line.
	Open Span
	// Close is the span of the closing fence line. Only valid when Terminated
	// is true.
	Close Span
	// Terminated reports whether a closing fence was found.
	Terminated bool
}

// Link is an inline link or image. TOC entries also appear here.
type Link struct {
	// Text is the bracketed link text.
	Text string
	// Target is the raw link destination.
	Target string
	// Image reports whether the link is an image ("![...](...)").
	Image bool
	Span  Span
}

// Document is the parsed structure of one Markdown file.
type Document struct {
	// Path is the path the document was read from, used verbatim in findings.
	Path string
	// Lines holds the raw lines without terminators, for excerpting.
	Lines []string

	Headings []Heading
	// TOCHeading is the heading that opens the table of contents section, nil
	// when the document has none.
	TOCHeading *Heading
	TOC        []TOCEntry
	Fences     []Fence
	Links      []Link
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(path, f)
}

// Parse parses a Markdown document from r. path is only used for labeling.
func Parse(path string, r io.Reader) (*Document, error) {
	d := &Document{Path: path}
	p := parser{doc: d, slugs: map[string]int{}, inFence: -1}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	p.finish()
	return d, nil
}

// HeadingByAnchor returns the heading with the given anchor slug, or nil.
func (d *Document) HeadingByAnchor(anchor string) *Heading {
	for i := range d.Headings {
		if d.Headings[i].Anchor == anchor {
			return &d.Headings[i]
		}
	}
	return nil
}
