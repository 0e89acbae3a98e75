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
	"os"

	flag "github.com/spf13/pflag"

	"github.com/mdref-project/mdref/internal/engine"
)

type docCmd struct {
}

func (*docCmd) Name() string {
	return "doc"
}

func (*docCmd) Description() string {
	return "Print documentation for a built-in check, or for all of them when no name is given."
}

func (*docCmd) SetFlags(f *flag.FlagSet) {
}

func (d *docCmd) Execute(ctx context.Context, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	} else if len(args) > 1 {
		return errors.New("only specify one check")
	}
	doc, err := engine.Doc(name)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(doc)
	return err
}
