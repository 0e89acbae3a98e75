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
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/mdref-project/mdref/internal/log"
)

// commitRef represents a commit.
type commitRef struct {
	// hash is the commit hash, a hex encoded SHA-1 digest for git.
	hash string
	// ref is a git tag, branch name or other human readable reference.
	ref string
}

// scmCheckout is the generic interface for version controlled sources.
type scmCheckout interface {
	affectedFiles(ctx context.Context) ([]string, error)
	allFiles(ctx context.Context) ([]string, error)
}

func getSCM(ctx context.Context, root string) scmCheckout {
	g := &gitCheckout{}
	err := g.init(ctx, root)
	if err == nil {
		return g
	}
	log.WithComponent("scm").Debug().Err(err).Msg("git not detected")
	return &rawTree{root: root}
}

// gitCheckout represents a git checkout.
type gitCheckout struct {
	head     commitRef
	upstream commitRef
	root     string // root path may differ from the run's root!
	env      []string

	mu       sync.Mutex
	modified []string // modified files in this checkout
	all      []string // all files in the repo
	err      error    // saved error
}

func (g *gitCheckout) init(ctx context.Context, root string) error {
	g.root = root
	g.root = g.run(ctx, "rev-parse", "--show-toplevel")
	g.head.hash = g.run(ctx, "rev-parse", "HEAD")
	g.head.ref = g.run(ctx, "rev-parse", "--abbrev-ref=strict", "--symbolic-full-name", "HEAD")
	if g.err != nil {
		// Not worth continuing.
		return g.err
	}
	// Determine pristine status, ignoring untracked files. Indexed or not is
	// not distinguished.
	isPristine := g.run(ctx, "status", "--porcelain", "--untracked-files=no") == ""
	g.upstream.hash = g.run(ctx, "rev-parse", "@{u}")
	g.upstream.ref = g.run(ctx, "rev-parse", "--abbrev-ref=strict", "--symbolic-full-name", "@{u}")
	if g.err != nil {
		const noUpstream = "no upstream configured for branch"
		const noBranch = "HEAD does not point to a branch"
		if s := g.err.Error(); strings.Contains(s, noUpstream) || strings.Contains(s, noBranch) {
			// If @{u} is undefined, silently default to HEAD~1 if pristine,
			// HEAD otherwise.
			g.err = nil
			if isPristine {
				// If HEAD~1 doesn't exist, this will fail.
				g.upstream.ref = "HEAD~1"
			} else {
				g.upstream.ref = "HEAD"
			}
		}
	}
	return g.err
}

// run runs a git command in the checkout. After init() is called, the mu lock
// is expected to be held.
func (g *gitCheckout) run(ctx context.Context, args ...string) string {
	if g.err != nil {
		return ""
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.root
	if g.env == nil {
		// First is for git version before 2.32, the rest skip the user and
		// system config.
		g.env = append(os.Environ(), "GIT_CONFIG_NOGLOBAL=true", "GIT_CONFIG_GLOBAL=", "GIT_CONFIG_SYSTEM=")
	}
	cmd.Env = g.env
	out, err := cmd.CombinedOutput()
	if err != nil {
		g.err = fmt.Errorf("error running git %s: %s", strings.Join(args, " "), out)
	}
	return strings.TrimSpace(string(out))
}

// affectedFiles returns the modified files on this checkout.
//
// The entries are lazy loaded and cached.
func (g *gitCheckout) affectedFiles(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.modified == nil {
		if o := g.run(ctx, "diff", "--name-only", "-z", g.upstream.ref); len(o) != 0 {
			g.modified = strings.Split(o[:len(o)-1], "\x00")
			sort.Strings(g.modified)
		} else {
			g.modified = []string{}
		}
	}
	return g.modified, g.err
}

// allFiles returns all the files in this checkout.
//
// The entries are lazy loaded and cached.
func (g *gitCheckout) allFiles(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.all == nil {
		if o := g.run(ctx, "ls-files", "-z"); len(o) != 0 {
			g.all = strings.Split(o[:len(o)-1], "\x00")
			sort.Strings(g.all)
		} else {
			g.all = []string{}
		}
	}
	return g.all, g.err
}

// rawTree is the fallback when the tree is not version controlled.
type rawTree struct {
	root string

	mu  sync.Mutex
	all []string
}

func (r *rawTree) affectedFiles(ctx context.Context) ([]string, error) {
	return r.allFiles(ctx)
}

// allFiles returns all files in this directory tree.
func (r *rawTree) allFiles(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.all == nil {
		l := len(r.root) + 1
		err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				// Hidden directories are never interesting for documents.
				if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
					return fs.SkipDir
				}
				return nil
			}
			r.all = append(r.all, filepath.ToSlash(path[l:]))
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(r.all)
	}
	return r.all, nil
}

// specifiedFilesOnly is the scm for explicit positional file arguments; every
// listed file counts as both affected and all.
type specifiedFilesOnly struct {
	files []string
}

func (s *specifiedFilesOnly) affectedFiles(ctx context.Context) ([]string, error) {
	return s.files, nil
}

func (s *specifiedFilesOnly) allFiles(ctx context.Context) ([]string, error) {
	return s.files, nil
}

// filteredSCM filters out files matching the config ignore patterns.
type filteredSCM struct {
	matcher gitignore.Matcher
	scm     scmCheckout
}

func (f *filteredSCM) affectedFiles(ctx context.Context) ([]string, error) {
	files, err := f.scm.affectedFiles(ctx)
	return f.filter(files), err
}

func (f *filteredSCM) allFiles(ctx context.Context) ([]string, error) {
	files, err := f.scm.allFiles(ctx)
	return f.filter(files), err
}

func (f *filteredSCM) filter(files []string) []string {
	var out []string
	for _, file := range files {
		if !f.matcher.Match(strings.Split(file, "/"), false) {
			out = append(out, file)
		}
	}
	return out
}

// cachingSCM memoizes the underlying scm's responses.
type cachingSCM struct {
	scm scmCheckout

	mu       sync.Mutex
	affected []string
	all      []string
}

func (c *cachingSCM) affectedFiles(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.affected == nil {
		var err error
		if c.affected, err = c.scm.affectedFiles(ctx); err != nil {
			return nil, err
		}
	}
	return c.affected, nil
}

func (c *cachingSCM) allFiles(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.all == nil {
		var err error
		if c.all, err = c.scm.allFiles(ctx); err != nil {
			return nil, err
		}
	}
	return c.all, nil
}
