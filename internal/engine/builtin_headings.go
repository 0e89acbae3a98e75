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
)

var headingsCheck = &registeredCheck{
	name: "headings",
	doc: `Validates the heading outline.

Heading text must be unique within a nesting level and heading levels must
not skip, e.g. a "#" section must not jump straight to "###".`,
	run: runHeadingsCheck,
}

func runHeadingsCheck(ctx context.Context, cc *checkContext) error {
	for _, d := range cc.docs {
		type key struct {
			level int
			text  string
		}
		seen := map[key]int{}
		prevLevel := 0
		for _, h := range d.Headings {
			k := key{h.Level, h.Text}
			if first, ok := seen[k]; ok {
				msg := fmt.Sprintf("heading %q duplicates line %d at the same nesting level", h.Text, first)
				if err := cc.emit(ctx, Error, msg, d.Path, h.Span, nil); err != nil {
					return err
				}
			} else {
				seen[k] = h.Span.Start.Line
			}
			if prevLevel != 0 && h.Level > prevLevel+1 {
				msg := fmt.Sprintf("heading level skips from %d to %d", prevLevel, h.Level)
				if err := cc.emit(ctx, Warning, msg, d.Path, h.Span, nil); err != nil {
					return err
				}
			}
			prevLevel = h.Level
		}
	}
	return nil
}
