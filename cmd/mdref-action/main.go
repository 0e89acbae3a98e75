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

// Package main is the GitHub Action entry point. It runs the document checks
// against the workspace, surfaces findings as workflow annotations and posts
// a summary comment on the pull request.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-githubactions"

	"github.com/mdref-project/mdref/internal/document"
	"github.com/mdref-project/mdref/internal/engine"
	"github.com/mdref-project/mdref/internal/github"
	"github.com/mdref-project/mdref/internal/reporting"
)

func main() {
	action := githubactions.New()
	ctx := context.Background()

	workspace := os.Getenv("GITHUB_WORKSPACE")
	if workspace == "" {
		action.Fatalf("GITHUB_WORKSPACE environment variable is not set")
	}
	dir := workspace
	if docs := action.GetInput("docs"); docs != "" {
		dir = docs
	}

	r, err := reporting.Get(ctx)
	if err != nil {
		action.Fatalf("%s", err)
	}
	collector := &findingCollector{}
	r.Reporters = append(r.Reporters, collector)

	o := engine.Options{
		Report:   r,
		Dir:      dir,
		AllFiles: action.GetInput("all") != "false",
	}
	runErr := engine.Run(ctx, &o)
	if err := r.Close(); runErr == nil {
		runErr = err
	}
	if runErr != nil && !errors.Is(runErr, engine.ErrCheckFailed) {
		action.Fatalf("%s", runErr)
	}

	if err := commentOnPR(ctx, action, collector.findings); err != nil {
		// A missing token or a non-PR event should not mask the check result.
		action.Warningf("could not post PR comment: %s", err)
	}

	if runErr != nil {
		action.Fatalf("document checks failed with %d finding(s)", len(collector.findings))
	}
	action.Infof("all document checks passed")
}

// commentOnPR posts the findings summary when running in a pull request
// context and a token is available.
func commentOnPR(ctx context.Context, action *githubactions.Action, findings []github.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	if os.Getenv("GITHUB_EVENT_NAME") != "pull_request" {
		return nil
	}
	token := action.GetInput("github_token")
	if token == "" {
		return errors.New("github_token input is not set")
	}
	repoFullName := os.Getenv("GITHUB_REPOSITORY")
	if repoFullName == "" {
		return errors.New("GITHUB_REPOSITORY environment variable is not set")
	}
	prNumber, err := extractPRNumber(os.Getenv("GITHUB_REF"))
	if err != nil {
		return err
	}
	client, err := github.NewClient(token, repoFullName)
	if err != nil {
		return err
	}
	return client.CommentFindings(ctx, prNumber, findings)
}

// extractPRNumber parses the pull request number out of a
// "refs/pull/{number}/merge" ref.
func extractPRNumber(ref string) (int, error) {
	rest, ok := strings.CutPrefix(ref, "refs/pull/")
	if !ok {
		return 0, fmt.Errorf("could not extract PR number from ref %q", ref)
	}
	num, _, _ := strings.Cut(rest, "/")
	return strconv.Atoi(num)
}

// findingCollector accumulates findings so they can be rendered into a
// single PR comment after the run.
type findingCollector struct {
	mu       sync.Mutex
	findings []github.Finding
}

var _ reporting.Report = (*findingCollector)(nil)

func (c *findingCollector) EmitFinding(ctx context.Context, check string, level engine.Level, message, root, file string, s document.Span, replacements []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, github.Finding{
		Check:   check,
		Level:   string(level),
		File:    file,
		Line:    s.Start.Line,
		Message: message,
	})
	return nil
}

func (c *findingCollector) CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, level engine.Level, err error) {
}

func (c *findingCollector) Print(ctx context.Context, check, file string, line int, message string) {
}

func (c *findingCollector) Close() error {
	return nil
}
