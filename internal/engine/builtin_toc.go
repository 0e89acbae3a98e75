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

	"github.com/mdref-project/mdref/internal/document"
)

var tocCheck = &registeredCheck{
	name: "toc",
	doc: `Validates the table of contents against the document's headings.

Every entry must link to an anchor that belongs to exactly one heading,
entries must appear in the same order as the headings they reference, no
anchor may be listed twice, and every section heading below the table of
contents must be listed.`,
	run: runTOCCheck,
}

func runTOCCheck(ctx context.Context, cc *checkContext) error {
	for _, d := range cc.docs {
		if d.TOCHeading == nil {
			// Not every document carries a table of contents.
			continue
		}
		seen := map[string]bool{}
		lastLine := 0
		for _, e := range d.TOC {
			if seen[e.Anchor] {
				if err := cc.emit(ctx, Warning, fmt.Sprintf("anchor #%s is listed twice in the table of contents", e.Anchor), d.Path, e.Span, nil); err != nil {
					return err
				}
				continue
			}
			seen[e.Anchor] = true
			h := d.HeadingByAnchor(e.Anchor)
			if h == nil {
				if err := cc.emit(ctx, Error, fmt.Sprintf("%q links to missing anchor #%s", e.Text, e.Anchor), d.Path, e.Span, nil); err != nil {
					return err
				}
				continue
			}
			if h.Span.Start.Line < lastLine {
				if err := cc.emit(ctx, Error, fmt.Sprintf("%q is out of order: heading %q appears earlier in the document", e.Text, h.Text), d.Path, e.Span, nil); err != nil {
					return err
				}
				continue
			}
			lastLine = h.Span.Start.Line
		}
		for _, h := range sectionHeadings(d) {
			if !seen[h.Anchor] {
				if err := cc.emit(ctx, Warning, fmt.Sprintf("heading %q is not listed in the table of contents", h.Text), d.Path, h.Span, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// sectionHeadings returns the headings a table of contents is expected to
// list: the ones at the same level as the TOC heading itself, below it.
func sectionHeadings(d *document.Document) []document.Heading {
	var out []document.Heading
	for _, h := range d.Headings {
		if h.Level != d.TOCHeading.Level {
			continue
		}
		if h.Span.Start.Line <= d.TOCHeading.Span.Start.Line {
			continue
		}
		out = append(out, h)
	}
	return out
}
