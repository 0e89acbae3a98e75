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
	"os"

	flag "github.com/spf13/pflag"

	"github.com/mdref-project/mdref/internal/engine"
	"github.com/mdref-project/mdref/internal/reporting"
)

type checkCmd struct {
	commandBase
	sarifOut string
}

func (*checkCmd) Name() string {
	return "check"
}

func (*checkCmd) Description() string {
	return "Run checks over Markdown documents."
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.commandBase.SetFlags(f)
	f.StringVar(&c.sarifOut, "sarif", "", "also write findings as SARIF to the given file, \"-\" for stdout")
}

func (c *checkCmd) Execute(ctx context.Context, args []string) error {
	o, err := c.options(args)
	if err != nil {
		return err
	}
	r, err := reporting.Get(ctx)
	if err != nil {
		return err
	}
	if c.sarifOut != "" {
		out := os.Stdout
		if c.sarifOut != "-" {
			if out, err = os.Create(c.sarifOut); err != nil {
				return err
			}
			defer out.Close()
		}
		r.Reporters = append(r.Reporters, &reporting.SarifReport{Out: out})
	}
	o.Report = r
	err = engine.Run(ctx, &o)
	if err2 := r.Close(); err == nil {
		err = err2
	}
	return err
}
