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
	"fmt"
	"strings"
)

// Doc returns the documentation for the named builtin check, or for all of
// them when name is empty.
func Doc(name string) (string, error) {
	if name != "" {
		for _, c := range builtinChecks {
			if c.name == name {
				return renderCheckDoc(c), nil
			}
		}
		return "", fmt.Errorf("no builtin check named %q", name)
	}
	var b strings.Builder
	b.WriteString("Builtin checks:\n\n")
	for _, c := range builtinChecks {
		b.WriteString(renderCheckDoc(c))
	}
	return b.String(), nil
}

func renderCheckDoc(c *registeredCheck) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", c.name)
	b.WriteString(c.doc)
	if !strings.HasSuffix(c.doc, "\n") {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}
