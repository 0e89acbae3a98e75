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

// Package engine runs structural checks over Markdown reference documents.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mdref-project/mdref/internal/document"
	"github.com/mdref-project/mdref/internal/log"
)

// DefaultEntryPoint is the default basename of the Starlark file defining
// custom checks.
const DefaultEntryPoint = "mdref.star"

// DefaultConfig is the default basename of the project configuration file.
const DefaultConfig = "mdref.yaml"

// Level is one of "notice", "warning" or "error".
//
// A run is only considered failed if at least one finding with level "error"
// was emitted.
type Level string

var _ flag.Value = (*Level)(nil)

// Valid Level values.
const (
	Notice  Level = "notice"
	Warning Level = "warning"
	Error   Level = "error"
	Nothing Level = ""
)

func (l *Level) Set(value string) error {
	*l = Level(value)
	if !l.isValid() {
		return fmt.Errorf("invalid level value %q", l)
	}
	return nil
}

func (l *Level) String() string {
	return string(*l)
}

func (l *Level) Type() string {
	return "level"
}

func (l Level) isValid() bool {
	switch l {
	case Notice, Warning, Error:
		return true
	default:
		return false
	}
}

// rank orders levels by severity for highest-level tracking.
func (l Level) rank() int {
	switch l {
	case Error:
		return 3
	case Warning:
		return 2
	case Notice:
		return 1
	default:
		return 0
	}
}

// Report exposes callbacks that the engine calls for everything generated by
// the checks.
type Report interface {
	// EmitFinding emits a finding by a check for a specific file. This is not
	// a failure by itself, unless level "error" is used.
	EmitFinding(ctx context.Context, check string, level Level, message, root, file string, s document.Span, replacements []string) error
	// CheckCompleted is called when a check is completed.
	//
	// It is called with the start time, wall clock duration, the highest
	// level emitted and an error if an abnormal error occurred.
	CheckCompleted(ctx context.Context, check string, start time.Time, d time.Duration, r Level, err error)
	// Print is called when the print() Starlark function is called by a
	// custom check.
	Print(ctx context.Context, check, file string, line int, message string)
}

// CheckFilter controls which checks are run.
type CheckFilter struct {
	// AllowList specifies checks to run. If non-empty, all other checks will
	// be skipped.
	AllowList []string
	// DenyList specifies checks to skip.
	DenyList []string
}

func (f *CheckFilter) filter(checks []*registeredCheck) ([]*registeredCheck, error) {
	if len(checks) == 0 {
		return checks, nil
	}
	allowList := make(map[string]struct{})
	for _, name := range f.AllowList {
		allowList[name] = struct{}{}
	}
	var allowedAndDenied []string
	denyList := make(map[string]struct{})
	for _, name := range f.DenyList {
		denyList[name] = struct{}{}
		if _, ok := allowList[name]; ok {
			allowedAndDenied = append(allowedAndDenied, name)
		}
	}
	if len(allowedAndDenied) > 0 {
		return nil, fmt.Errorf(
			"checks cannot be both allowed and denied: %s",
			strings.Join(allowedAndDenied, ", "))
	}

	var filtered []*registeredCheck
	for _, check := range checks {
		if len(f.AllowList) != 0 {
			if _, ok := allowList[check.name]; !ok {
				continue
			}
			delete(allowList, check.name)
		}
		if _, ok := denyList[check.name]; ok {
			delete(denyList, check.name)
			continue
		}
		filtered = append(filtered, check)
	}

	if len(allowList) > 0 || len(denyList) > 0 {
		var invalidChecks []string
		for name := range allowList {
			invalidChecks = append(invalidChecks, name)
		}
		for name := range denyList {
			invalidChecks = append(invalidChecks, name)
		}
		var msg string
		if len(invalidChecks) == 1 {
			msg = "check does not exist"
		} else {
			msg = "checks do not exist"
		}
		slices.Sort(invalidChecks)
		return nil, fmt.Errorf("%s: %s", msg, strings.Join(invalidChecks, ", "))
	}

	if len(filtered) == 0 {
		// Fail noisily if all checks are filtered out, it's probably user
		// error.
		return nil, errors.New("no checks to run")
	}
	return filtered, nil
}

// Options is the options for Run().
type Options struct {
	// Report gets all the emitted findings from the checks.
	//
	// This is the only required argument. It is recommended to use
	// reporting.Get() which returns the right implementation based on the
	// environment (CI, interactive, etc).
	Report Report
	// Dir overrides the current working directory, making mdref behave as if
	// it was run in the specified directory. It defaults to the current
	// working directory.
	Dir string
	// Files lists specific documents to check.
	Files []string
	// AllFiles tells the engine to consider all tracked documents rather than
	// only the ones that differ from the git upstream.
	AllFiles bool
	// Filter controls which checks run.
	Filter CheckFilter
	// Vars contains the user-specified runtime variables exposed to custom
	// checks. Merged over the config file's vars.
	Vars map[string]string
	// EntryPoint is the Starlark file defining custom checks. Defaults to
	// mdref.star. Its absence is not an error.
	EntryPoint string

	// config is the configuration file. Defaults to mdref.yaml. Only
	// overridden in unit tests.
	config string
}

// Run discovers Markdown documents under the working directory and runs every
// registered check over them.
func Run(ctx context.Context, o *Options) error {
	root, err := resolveRoot(o.Dir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root, o.config)
	if err != nil {
		return err
	}
	docs, err := discoverDocuments(ctx, o, root, cfg)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		log.WithComponent("engine").Debug().Str("root", root).Msg("no markdown documents to check")
		return nil
	}

	vars := map[string]string{}
	for k, v := range cfg.Vars {
		vars[k] = v
	}
	for k, v := range o.Vars {
		if _, ok := vars[k]; !ok && len(cfg.Vars) > 0 {
			return fmt.Errorf("var not declared in %s: %s", DefaultConfig, k)
		}
		vars[k] = v
	}

	checks := slices.Clone(builtinChecks)
	entryPoint := o.EntryPoint
	if entryPoint == "" {
		entryPoint = DefaultEntryPoint
	}
	if filepath.IsAbs(entryPoint) {
		return errors.New("entry point file must not be an absolute path")
	}
	custom, err := loadCustomChecks(root, entryPoint)
	if err != nil {
		return err
	}
	checks = append(checks, custom...)

	filter := CheckFilter{
		AllowList: append(slices.Clone(cfg.Checks.Allow), o.Filter.AllowList...),
		DenyList:  append(slices.Clone(cfg.Checks.Deny), o.Filter.DenyList...),
	}
	if checks, err = filter.filter(checks); err != nil {
		return err
	}

	return runChecks(ctx, root, checks, docs, vars, o.Report)
}

// discoverDocuments builds the scm view dictated by the options and parses
// the resulting document set.
func discoverDocuments(ctx context.Context, o *Options, root string, cfg *config) ([]*document.Document, error) {
	var scm scmCheckout
	if len(o.Files) > 0 {
		files, err := normalizeFiles(o.Files, root)
		if err != nil {
			return nil, err
		}
		scm = &specifiedFilesOnly{files: files}
	} else {
		scm = getSCM(ctx, root)
		if len(cfg.Ignore) > 0 {
			var patterns []gitignore.Pattern
			for _, p := range cfg.Ignore {
				if p == "" {
					return nil, errors.New("ignore patterns cannot be empty strings")
				}
				patterns = append(patterns, gitignore.ParsePattern(p, nil))
			}
			scm = &filteredSCM{
				matcher: gitignore.NewMatcher(patterns),
				scm:     scm,
			}
		}
		scm = &cachingSCM{scm: scm}
	}
	return parseDocuments(ctx, root, scm, o.AllFiles, len(o.Files) > 0)
}

// parseDocuments loads and parses every relevant Markdown document in
// parallel, capped at the CPU count.
func parseDocuments(ctx context.Context, root string, scm scmCheckout, allFiles, explicit bool) ([]*document.Document, error) {
	var files []string
	var err error
	if allFiles || explicit {
		files, err = scm.allFiles(ctx)
	} else {
		files, err = scm.affectedFiles(ctx)
	}
	if err != nil {
		return nil, err
	}
	var mdFiles []string
	for _, f := range files {
		if isMarkdown(f) {
			mdFiles = append(mdFiles, f)
		} else if explicit {
			return nil, fmt.Errorf("%s: not a markdown document", f)
		}
	}

	docs := make([]*document.Document, len(mdFiles))
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	eg, ectx := errgroup.WithContext(ctx)
	for i, f := range mdFiles {
		i, f := i, f
		eg.Go(func() error {
			if err := sem.Acquire(ectx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			d, err := document.ParseFile(filepath.Join(root, f))
			if err != nil {
				return err
			}
			// Findings reference documents by root-relative path.
			d.Path = f
			docs[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// runChecks runs all checks concurrently. Each check sees every document.
func runChecks(ctx context.Context, root string, checks []*registeredCheck, docs []*document.Document, vars map[string]string, r Report) error {
	var eg errgroup.Group
	failures := make([]bool, len(checks))
	for i, check := range checks {
		i, check := i, check
		eg.Go(func() error {
			start := time.Now()
			cc := &checkContext{
				name: check.name,
				root: root,
				docs: docs,
				vars: vars,
				r:    r,
			}
			err := check.run(ctx, cc)
			r.CheckCompleted(ctx, check.name, start, time.Since(start), cc.highestLevel(), err)
			failures[i] = cc.highestLevel() == Error
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if slices.Contains(failures, true) {
		return ErrCheckFailed
	}
	return nil
}

func resolveRoot(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return root, nil
}

// normalizeFiles makes paths relative to root and checks they exist.
func normalizeFiles(files []string, root string) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(root, f)
		}
		rel, err := filepath.Rel(root, f)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("%s is not under the root directory", f)
		}
		fi, err := os.Stat(f)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("%s is a directory, expected a document", f)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
