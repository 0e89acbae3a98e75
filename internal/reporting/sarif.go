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

package reporting

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/mdref-project/mdref/internal/document"
	"github.com/mdref-project/mdref/internal/engine"
	"github.com/mdref-project/mdref/internal/sarif"
)

// SarifReport converts findings into SARIF JSON output.
type SarifReport struct {
	// SARIF output gets written here when Close() is called.
	Out io.Writer

	mu             sync.Mutex
	resultsByCheck map[string][]*sarif.Result
}

var levelMap = map[engine.Level]string{
	engine.Notice:  sarif.Note,
	engine.Warning: sarif.Warning,
	engine.Error:   sarif.Error,
}

func (sr *SarifReport) EmitFinding(ctx context.Context, check string, level engine.Level, message, root, file string, s document.Span, replacements []string) error {
	region := &sarif.Region{
		StartLine:   s.Start.Line,
		EndLine:     s.End.Line,
		StartColumn: s.Start.Col,
		EndColumn:   s.End.Col,
	}

	var fixes []*sarif.Fix
	for _, repl := range replacements {
		fixes = append(fixes, &sarif.Fix{
			ArtifactChanges: []*sarif.ArtifactChange{
				{
					ArtifactLocation: &sarif.ArtifactLocation{URI: file},
					Replacements: []*sarif.Replacement{
						{
							DeletedRegion:   region,
							InsertedContent: &sarif.ArtifactContent{Text: repl},
						},
					},
				},
			},
		})
	}

	result := &sarif.Result{
		Level:   levelMap[level],
		Message: &sarif.Message{Text: message},
		Locations: []*sarif.Location{
			{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: file},
					Region:           region,
				},
			},
		},
		Fixes: fixes,
	}

	sr.mu.Lock()
	if sr.resultsByCheck == nil {
		sr.resultsByCheck = make(map[string][]*sarif.Result)
	}
	sr.resultsByCheck[check] = append(sr.resultsByCheck[check], result)
	sr.mu.Unlock()

	return nil
}

func (sr *SarifReport) CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, level engine.Level, err error) {
}

func (sr *SarifReport) Print(context.Context, string, string, int, string) {}

func (sr *SarifReport) Close() error {
	// The runs property is mandatory, even when nothing was reported.
	doc := &sarif.Document{Version: sarif.Version, Runs: []*sarif.Run{}}
	// Sort for determinism.
	var sortedChecks []string
	for check := range sr.resultsByCheck {
		sortedChecks = append(sortedChecks, check)
	}
	sort.Strings(sortedChecks)

	for _, check := range sortedChecks {
		doc.Runs = append(doc.Runs, &sarif.Run{
			Tool: &sarif.Tool{
				Driver: &sarif.ToolComponent{Name: check},
			},
			Results: sr.resultsByCheck[check],
		})
	}

	enc := json.NewEncoder(sr.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
