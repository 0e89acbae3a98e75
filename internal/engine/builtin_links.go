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
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mdref-project/mdref/internal/document"
)

var linksCheck = &registeredCheck{
	name: "links",
	doc: `Validates link targets.

Absolute URLs must parse and carry a host, plain http links are flagged in
favor of https, anchor links must resolve to a heading in the same document
and relative links must point at an existing file. No network access: URLs
are checked for well-formedness, never fetched.`,
	run: runLinksCheck,
}

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

func runLinksCheck(ctx context.Context, cc *checkContext) error {
	for _, d := range cc.docs {
		for _, l := range d.Links {
			level, msg := classifyLink(cc.root, d, l.Target)
			if level == Nothing {
				continue
			}
			if err := cc.emit(ctx, level, msg, d.Path, l.Span, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func classifyLink(root string, d *document.Document, target string) (Level, string) {
	switch {
	case target == "":
		return Error, "empty link target"
	case strings.HasPrefix(target, "#"):
		anchor := target[1:]
		if d.HeadingByAnchor(anchor) == nil {
			return Error, fmt.Sprintf("links to missing anchor #%s", anchor)
		}
		return Nothing, ""
	case schemeRe.MatchString(target):
		u, err := url.Parse(target)
		if err != nil {
			return Error, fmt.Sprintf("malformed URL %q: %s", target, err)
		}
		switch u.Scheme {
		case "http", "https":
			if u.Host == "" {
				return Error, fmt.Sprintf("malformed URL %q: missing host", target)
			}
			if u.Scheme == "http" {
				return Warning, fmt.Sprintf("%q uses http, prefer https", target)
			}
		case "mailto":
			if u.Opaque == "" {
				return Error, fmt.Sprintf("malformed URL %q: missing address", target)
			}
		}
		return Nothing, ""
	default:
		// Relative link; strip any fragment before looking on disk.
		rel := target
		if i := strings.IndexByte(rel, '#'); i >= 0 {
			rel = rel[:i]
		}
		if rel == "" {
			return Nothing, ""
		}
		p := filepath.Join(root, path.Dir(d.Path), filepath.FromSlash(rel))
		if _, err := os.Stat(p); err != nil {
			return Warning, fmt.Sprintf("relative link target %q does not exist", target)
		}
		return Nothing, ""
	}
}
