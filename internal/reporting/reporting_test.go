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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mdref-project/mdref/internal/document"
	"github.com/mdref-project/mdref/internal/engine"
)

func TestBasic(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	r := &basic{out: buf}
	ctx := context.Background()

	span := document.Span{Start: document.Cursor{Line: 12, Col: 1}, End: document.Cursor{Line: 12, Col: 20}}
	if err := r.EmitFinding(ctx, "toc", engine.Error, "out of order", "/root", "guide.md", span, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.EmitFinding(ctx, "links", engine.Warning, "prefer https", "/root", "guide.md", document.Span{}, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.EmitFinding(ctx, "custom", engine.Notice, "no file at all", "/root", "", document.Span{}, nil); err != nil {
		t.Fatal(err)
	}
	r.Print(ctx, "custom", "mdref.star", 3, "hello")
	r.CheckCompleted(ctx, "toc", time.Now(), 4*time.Millisecond, engine.Error, nil)
	r.CheckCompleted(ctx, "fences", time.Now(), time.Millisecond, engine.Nothing, nil)

	want := "[toc/error] guide.md(12): out of order\n" +
		"[links/warning] guide.md: prefer https\n" +
		"[custom/notice] no file at all\n" +
		"- custom [mdref.star:3] hello\n" +
		"- toc (error in 4ms)\n" +
		"- fences (success in 1ms)\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestInteractive(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	content := "# Guide\n" +
		"\n" +
		"- [Gone](#gone)\n" +
		"\n" +
		"## Alpha\n"
	if err := os.WriteFile(filepath.Join(root, "guide.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	r := &interactive{out: buf}
	ctx := context.Background()

	span := document.Span{Start: document.Cursor{Line: 3, Col: 1}, End: document.Cursor{Line: 3, Col: 15}}
	if err := r.EmitFinding(ctx, "toc", engine.Error, "missing anchor", root, "guide.md", span, nil); err != nil {
		t.Fatal(err)
	}

	want := "\x1b[0m[\x1b[96mtoc\x1b[0m/\x1b[31merror\x1b[0m] guide.md(3): missing anchor\n" +
		"\n" +
		"  \n" +
		"  \x1b[31m- [Gone](#gone)\x1b[0m\n" +
		"  \n" +
		"\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiReport(t *testing.T) {
	t.Parallel()
	b1 := &bytes.Buffer{}
	b2 := &bytes.Buffer{}
	m := &MultiReport{Reporters: []Report{&basic{out: b1}, &basic{out: b2}}}
	ctx := context.Background()
	if err := m.EmitFinding(ctx, "toc", engine.Notice, "tee", "/root", "", document.Span{}, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	want := "[toc/notice] tee\n"
	if b1.String() != want || b2.String() != want {
		t.Fatalf("tee mismatch: %q, %q", b1.String(), b2.String())
	}
}

func TestSarifReport(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	r := &SarifReport{Out: buf}
	ctx := context.Background()

	span := document.Span{Start: document.Cursor{Line: 7, Col: 1}, End: document.Cursor{Line: 7, Col: 10}}
	if err := r.EmitFinding(ctx, "toc", engine.Error, "missing anchor", "/root", "guide.md", span, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.EmitFinding(ctx, "fences", engine.Warning, "no language tag", "/root", "guide.md", document.Span{}, []string{"```zig"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	want := `{
  "version": "2.1.0",
  "runs": [
    {
      "tool": {
        "driver": {
          "name": "fences"
        }
      },
      "results": [
        {
          "level": "warning",
          "message": {
            "text": "no language tag"
          },
          "locations": [
            {
              "physicalLocation": {
                "artifactLocation": {
                  "uri": "guide.md"
                },
                "region": {}
              }
            }
          ],
          "fixes": [
            {
              "artifactChanges": [
                {
                  "artifactLocation": {
                    "uri": "guide.md"
                  },
                  "replacements": [
                    {
                      "deletedRegion": {},
                      "insertedContent": {
                        "text": "` + "```zig" + `"
                      }
                    }
                  ]
                }
              ]
            }
          ]
        }
      ]
    },
    {
      "tool": {
        "driver": {
          "name": "toc"
        }
      },
      "results": [
        {
          "level": "error",
          "message": {
            "text": "missing anchor"
          },
          "locations": [
            {
              "physicalLocation": {
                "artifactLocation": {
                  "uri": "guide.md"
                },
                "region": {
                  "startLine": 7,
                  "startColumn": 1,
                  "endLine": 7,
                  "endColumn": 10
                }
              }
            }
          ]
        }
      ]
    }
  ]
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSarifReportEmpty(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	r := &SarifReport{Out: buf}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	// runs is required by the schema even when there are no findings.
	want := "{\n  \"version\": \"2.1.0\",\n  \"runs\": []\n}\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
