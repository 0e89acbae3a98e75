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

package document

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)[ \t]*#*[ \t]*$`)
	fenceRe   = regexp.MustCompile("^ {0,3}(```+)[ \t]*([^`]*?)[ \t]*$")
	linkRe    = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]*)(?:[ \t]+"[^"]*")?\)`)
	tocItemRe = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+\.)[ \t]+\[([^\]]*)\]\(#([^)\s]+)\)[ \t]*$`)
)

// tocTitles are the heading texts that open a table of contents section.
var tocTitles = map[string]bool{
	"table of contents": true,
	"contents":          true,
	"toc":               true,
}

type parser struct {
	doc   *Document
	slugs map[string]int

	lineNum int
	// inFence is the index in doc.Fences of the currently open fence, or -1.
	inFence int
	// inTOC reports whether list items should be collected as TOC entries.
	inTOC bool
}

func (p *parser) line(raw string) {
	p.lineNum++
	p.doc.Lines = append(p.doc.Lines, raw)
	span := Span{
		Start: Cursor{Line: p.lineNum, Col: 1},
		End:   Cursor{Line: p.lineNum, Col: len(raw)},
	}

	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		if p.inFence >= 0 {
			// Closing fences must not carry an info string.
			if m[2] == "" {
				f := &p.doc.Fences[p.inFence]
				f.Close = span
				f.Terminated = true
				p.inFence = -1
			}
			return
		}
		p.doc.Fences = append(p.doc.Fences, Fence{Lang: m[2], Open: span})
		p.inFence = len(p.doc.Fences) - 1
		return
	}
	if p.inFence >= 0 {
		// Fenced content is opaque to the structural model.
		return
	}

	if m := headingRe.FindStringSubmatch(raw); m != nil {
		h := Heading{
			Level:  len(m[1]),
			Text:   m[2],
			Anchor: p.slug(m[2]),
			Span:   span,
		}
		p.doc.Headings = append(p.doc.Headings, h)
		last := &p.doc.Headings[len(p.doc.Headings)-1]
		if tocTitles[strings.ToLower(h.Text)] && p.doc.TOCHeading == nil {
			p.doc.TOCHeading = last
			p.inTOC = true
		} else {
			p.inTOC = false
		}
		return
	}

	if p.inTOC {
		if m := tocItemRe.FindStringSubmatch(raw); m != nil {
			p.doc.TOC = append(p.doc.TOC, TOCEntry{Text: m[1], Anchor: m[2], Span: span})
		}
	}

	for _, idx := range linkRe.FindAllStringSubmatchIndex(raw, -1) {
		p.doc.Links = append(p.doc.Links, Link{
			Image:  raw[idx[2]:idx[3]] == "!",
			Text:   raw[idx[4]:idx[5]],
			Target: raw[idx[6]:idx[7]],
			Span: Span{
				Start: Cursor{Line: p.lineNum, Col: idx[0] + 1},
				End:   Cursor{Line: p.lineNum, Col: idx[1]},
			},
		})
	}
}

func (p *parser) finish() {
	// An open fence at EOF stays unterminated; the fences check reports it.
}

// slug returns the GitHub anchor for a heading text, applying the "-1", "-2"
// suffixes GitHub uses to disambiguate repeated headings.
func (p *parser) slug(text string) string {
	s := Slug(text)
	n := p.slugs[s]
	p.slugs[s] = n + 1
	if n == 0 {
		return s
	}
	return s + "-" + strconv.Itoa(n)
}
