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
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/mdref-project/mdref/internal/engine"
)

type fmtCmd struct {
	commandBase
	quiet bool
	check bool
}

func (*fmtCmd) Name() string {
	return "fmt"
}

func (*fmtCmd) Description() string {
	return "Regenerate the table of contents and strip trailing whitespace."
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	c.commandBase.SetFlags(f)
	f.BoolVar(&c.quiet, "quiet", false, "Disable non-error output")
	f.BoolVar(&c.check, "check", false, "do not rewrite anything, fail if a document would change")
}

func (c *fmtCmd) Execute(ctx context.Context, args []string) error {
	o, err := c.options(args)
	if err != nil {
		return err
	}
	changed, err := engine.Fix(ctx, &o, c.check)
	if err != nil {
		return err
	}
	if !c.quiet {
		for _, f := range changed {
			fmt.Fprintln(os.Stdout, f)
		}
	}
	if c.check && len(changed) > 0 {
		return fmt.Errorf("%d document(s) need formatting", len(changed))
	}
	return nil
}
