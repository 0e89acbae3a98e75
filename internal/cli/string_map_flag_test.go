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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	flag "github.com/spf13/pflag"
)

func TestStringMapFlag(t *testing.T) {
	t.Parallel()
	data := []struct {
		name    string
		args    []string
		want    stringMapFlag
		wantErr string
	}{
		{
			name: "empty",
			args: nil,
			want: nil,
		},
		{
			name: "one",
			args: []string{"--var", "channel=stable"},
			want: stringMapFlag{"channel": "stable"},
		},
		{
			name: "two",
			args: []string{"--var", "channel=stable", "--var", "arch=x86_64"},
			want: stringMapFlag{"channel": "stable", "arch": "x86_64"},
		},
		{
			name: "empty string value",
			args: []string{"--var", "channel="},
			want: stringMapFlag{"channel": ""},
		},
		{
			name:    "empty string key",
			args:    []string{"--var", "=stable"},
			wantErr: `invalid argument "=stable" for "--var" flag: must be of the form key=value`,
		},
		{
			name:    "duplicate",
			args:    []string{"--var", "channel=stable", "--var", "channel=master"},
			wantErr: `invalid argument "channel=master" for "--var" flag: duplicate key`,
		},
		{
			name:    "malformed",
			args:    []string{"--var", "channel"},
			wantErr: `invalid argument "channel" for "--var" flag: must be of the form key=value`,
		},
	}
	for i := range data {
		i := i
		t.Run(data[i].name, func(t *testing.T) {
			m := stringMapFlag{}
			f := flag.NewFlagSet("test", flag.ContinueOnError)
			f.Var(&m, "var", "")

			err := f.Parse(data[i].args)
			if err != nil {
				if data[i].wantErr == "" {
					t.Fatal(err)
				}
				if diff := cmp.Diff(data[i].wantErr, err.Error()); diff != "" {
					t.Errorf("Unexpected error: %s", diff)
				}
			} else {
				if data[i].wantErr != "" {
					t.Fatalf("Wanted error %q, got nil", data[i].wantErr)
				}
				if diff := cmp.Diff(data[i].want, m, cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("unexpected diff:\n%s", diff)
				}
			}
		})
	}
}
