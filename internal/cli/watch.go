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

package cli

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/mdref-project/mdref/internal/engine"
	"github.com/mdref-project/mdref/internal/log"
	"github.com/mdref-project/mdref/internal/reporting"
)

type watchCmd struct {
	commandBase
	debounce time.Duration
}

func (*watchCmd) Name() string {
	return "watch"
}

func (*watchCmd) Description() string {
	return "Re-run checks whenever a watched document changes."
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	c.commandBase.SetFlags(f)
	f.DurationVar(&c.debounce, "debounce", 100*time.Millisecond, "time to coalesce bursts of file events")
}

func (c *watchCmd) Execute(ctx context.Context, args []string) error {
	o, err := c.options(args)
	if err != nil {
		return err
	}
	// Watching implies looking at the full document set, not the git delta.
	if len(o.Files) == 0 {
		o.AllFiles = true
	}

	logger := log.WithComponent("watch")
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watchTree(watcher, c.cwd); err != nil {
		return err
	}

	runOnce := func() {
		r, err := reporting.Get(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("reporter setup failed")
			return
		}
		o := o
		o.Report = r
		err = engine.Run(ctx, &o)
		if err2 := r.Close(); err == nil {
			err = err2
		}
		switch {
		case err == nil:
			logger.Info().Msg("all checks passed")
		case errors.Is(err, engine.ErrCheckFailed):
			// The findings were already reported.
		default:
			logger.Error().Err(err).Msg("run failed")
		}
	}

	runOnce()
	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pending:
			runOnce()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev) {
				continue
			}
			logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("document changed")
			// New directories need to be watched too.
			if ev.Op.Has(fsnotify.Create) {
				_ = watchTree(watcher, ev.Name)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(c.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// watchTree registers root and every non-hidden subdirectory.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}

func relevantEvent(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".md", ".markdown", ".star", ".yaml":
		return true
	default:
		// Directory creation has no extension worth matching.
		return ev.Op.Has(fsnotify.Create)
	}
}
