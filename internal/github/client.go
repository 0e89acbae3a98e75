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

// Package github posts check results back to a GitHub pull request.
package github

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// Finding is one reported problem, flattened for rendering into a comment.
type Finding struct {
	Check   string
	Level   string
	File    string
	Line    int
	Message string
}

// Client wraps the GitHub API for the repository the action runs in.
type Client struct {
	issues issuesService
	owner  string
	repo   string
}

// issuesService is the subset of the GitHub Issues API the client uses.
type issuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// NewClient creates a client authenticated with token for the repository
// named by repoFullName ("owner/repo").
func NewClient(token, repoFullName string) (*Client, error) {
	owner, repo, ok := strings.Cut(repoFullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository name %q, expected owner/repo", repoFullName)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{
		issues: github.NewClient(tc).Issues,
		owner:  owner,
		repo:   repo,
	}, nil
}

// CommentFindings posts a summary of findings as a comment on the pull
// request. It is a no-op when there is nothing to report.
func (c *Client) CommentFindings(ctx context.Context, prNumber int, findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	body := RenderComment(findings)
	if _, _, err := c.issues.CreateComment(ctx, c.owner, c.repo, prNumber, &github.IssueComment{Body: &body}); err != nil {
		return fmt.Errorf("failed to comment on PR #%d: %w", prNumber, err)
	}
	return nil
}

// RenderComment renders findings into a Markdown comment body, grouped by
// document and sorted by position.
func RenderComment(findings []Finding) string {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Line < sorted[j].Line
	})

	var b strings.Builder
	b.WriteString("## mdref found ")
	if len(sorted) == 1 {
		b.WriteString("1 issue\n\n")
	} else {
		fmt.Fprintf(&b, "%d issues\n\n", len(sorted))
	}
	b.WriteString("| Document | Line | Level | Check | Message |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, f := range sorted {
		file := f.File
		if file == "" {
			file = "-"
		}
		line := "-"
		if f.Line > 0 {
			line = fmt.Sprintf("%d", f.Line)
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n",
			file, line, f.Level, f.Check, escapeCell(f.Message))
	}
	return b.String()
}

// escapeCell keeps a finding message from breaking out of its table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
