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
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/mdref-project/mdref/internal/engine"
)

type commandBase struct {
	cwd        string
	allFiles   bool
	entryPoint string
	vars       stringMapFlag
	only       []string
	skip       []string
}

func (c *commandBase) SetFlags(f *flag.FlagSet) {
	c.vars = stringMapFlag{}
	f.StringVarP(&c.cwd, "cwd", "C", ".", "directory in which to run mdref")
	f.BoolVar(&c.allFiles, "all", false, "check all the documents instead of guessing the upstream to diff against")
	f.StringVar(&c.entryPoint, "entry-point", engine.DefaultEntryPoint, "Starlark file defining custom checks")
	f.Var(&c.vars, "var", "runtime variables exposed to custom checks, as name=value")
	f.StringSliceVar(&c.only, "only", nil, "run only the named checks")
	f.StringSliceVar(&c.skip, "skip", nil, "skip the named checks")
}

func (c *commandBase) options(files []string) (engine.Options, error) {
	if c.allFiles && len(files) > 0 {
		return engine.Options{}, errors.New("--all cannot be set together with positional file arguments")
	}
	return engine.Options{
		Dir:      c.cwd,
		AllFiles: c.allFiles,
		Files:    files,
		Vars:     c.vars,
		Filter: engine.CheckFilter{
			AllowList: c.only,
			DenyList:  c.skip,
		},
		EntryPoint: c.entryPoint,
	}, nil
}
