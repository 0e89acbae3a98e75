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

package github

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		repo     string
		wantErr  bool
		owner    string
		repoName string
	}{
		{
			name:     "valid",
			repo:     "mdref-project/mdref",
			owner:    "mdref-project",
			repoName: "mdref",
		},
		{
			name:    "missing slash",
			repo:    "mdref",
			wantErr: true,
		},
		{
			name:    "empty owner",
			repo:    "/mdref",
			wantErr: true,
		},
		{
			name:    "empty repo",
			repo:    "mdref-project/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient("token", tt.repo)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, c.owner)
			assert.Equal(t, tt.repoName, c.repo)
		})
	}
}

type fakeIssues struct {
	comments []string
}

func (f *fakeIssues) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	f.comments = append(f.comments, comment.GetBody())
	return comment, nil, nil
}

func TestCommentFindings(t *testing.T) {
	fake := &fakeIssues{}
	c := &Client{issues: fake, owner: "mdref-project", repo: "mdref"}

	err := c.CommentFindings(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Empty(t, fake.comments, "no comment expected when there is nothing to report")

	findings := []Finding{
		{Check: "fences", Level: "error", File: "docs/zig-cheatsheet.md", Line: 120, Message: "code fence is never terminated"},
		{Check: "toc", Level: "warning", File: "docs/zig-cheatsheet.md", Line: 5, Message: "heading \"Build System\" is not listed"},
	}
	err = c.CommentFindings(context.Background(), 7, findings)
	require.NoError(t, err)
	require.Len(t, fake.comments, 1)
	body := fake.comments[0]
	assert.True(t, strings.HasPrefix(body, "## mdref found 2 issues"))
	// Sorted by position, so the TOC finding comes first.
	assert.Less(t, strings.Index(body, "toc"), strings.Index(body, "fences"))
}

func TestRenderComment(t *testing.T) {
	findings := []Finding{
		{Check: "links", Level: "error", File: "README.md", Line: 3, Message: "anchor #missing does not resolve | really"},
		{Check: "headings", Level: "warning", Message: "global finding without a file"},
	}
	body := RenderComment(findings)

	assert.Contains(t, body, "| Document | Line | Level | Check | Message |")
	assert.Contains(t, body, "`README.md`")
	// Pipes in messages must not break the table.
	assert.Contains(t, body, `anchor #missing does not resolve \| really`)
	// File-less findings render placeholders.
	assert.Contains(t, body, "| `-` | - | warning | headings |")

	one := RenderComment(findings[:1])
	assert.True(t, strings.HasPrefix(one, "## mdref found 1 issue\n"))
}
