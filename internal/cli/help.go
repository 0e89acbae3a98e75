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

	flag "github.com/spf13/pflag"
)

type helpCmd struct {
}

func (*helpCmd) Name() string {
	return "help"
}

func (*helpCmd) Description() string {
	return "Help page."
}

func (*helpCmd) SetFlags(f *flag.FlagSet) {
}

func (d *helpCmd) Execute(ctx context.Context, args []string) error {
	return flag.ErrHelp
}
