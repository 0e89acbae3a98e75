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

	"golang.org/x/mod/semver"
)

type mdrefVersion [3]int

// Version is the current tool version.
var Version = mdrefVersion{0, 2, 0}

func (v mdrefVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// checkMinVersion validates a config file's min_version field against the
// running tool.
func checkMinVersion(minVersion string) error {
	if minVersion == "" {
		return nil
	}
	min := "v" + minVersion
	if !semver.IsValid(min) {
		return fmt.Errorf("invalid min_version %q", minVersion)
	}
	if semver.Compare(min, "v"+Version.String()) > 0 {
		return fmt.Errorf("mdref version %s is older than the required min_version %s", Version, minVersion)
	}
	return nil
}
