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
)

var fencesCheck = &registeredCheck{
	name: "fences",
	doc: `Validates fenced code blocks.

Every opening fence must have a matching closing fence. Opening fences
without a language tag are flagged so snippets render with highlighting.`,
	run: runFencesCheck,
}

func runFencesCheck(ctx context.Context, cc *checkContext) error {
	for _, d := range cc.docs {
		for _, f := range d.Fences {
			if !f.Terminated {
				if err := cc.emit(ctx, Error, "unterminated code fence", d.Path, f.Open, nil); err != nil {
					return err
				}
				// A dangling fence swallows the rest of the document; later
				// fences in this file are parse noise.
				break
			}
			if f.Lang == "" {
				if err := cc.emit(ctx, Warning, "code fence has no language tag", d.Path, f.Open, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
